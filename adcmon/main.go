package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"fyne.io/fyne/v2/app"
	"github.com/itohio/goadc/pkg/adc"
	"github.com/itohio/goadc/pkg/calib"
	"github.com/itohio/goadc/pkg/config"
	"github.com/itohio/goadc/pkg/monitor"
	"github.com/itohio/goadc/pkg/report"
	"github.com/itohio/goadc/pkg/view"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Use simulated device instead of serial port")
		guiFlag    = flag.Bool("gui", false, "Show live window")
		listFlag   = flag.Bool("list", false, "List serial ports and exit")
		writeFlag  = flag.Bool("write-config", false, "Write the effective configuration to -config and exit")
	)
	flag.Parse()

	if *listFlag {
		ports, err := adc.Ports()
		if err != nil {
			log.Fatalf("Failed to list ports: %v", err)
		}
		for _, p := range ports {
			fmt.Println(p.Name)
		}
		return
	}

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override serial port if provided via command line
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if *writeFlag {
		if err := cfg.Save(*configFlag); err != nil {
			log.Fatalf("Failed to save configuration: %v", err)
		}
		return
	}

	fuses := fusesFromConfig(&cfg.Calibration)
	cal, src, err := buildCalibrator(cfg, fuses)
	if err != nil {
		log.Fatalf("Calibration error: %v", err)
	}

	dev, err := openDevice(cfg, *mockFlag)
	if err != nil {
		log.Fatalf("Failed to open device: %v", err)
	}
	defer dev.Close()

	if *mockFlag {
		log.Println("Using simulated device")
	} else {
		log.Printf("Connected to serial port: %s", cfg.Serial.Port)
	}

	logReporter := report.NewLog(os.Stdout, cfg.Report.Tag)
	banner := bannerFor(cfg, fuses, src)
	logReporter.Banner(banner)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !*guiFlag {
		if err := run(ctx, cfg, dev, cal, logReporter); err != nil {
			log.Fatalf("Monitor error: %v", err)
		}
		return
	}

	application := app.NewWithID("com.itohio.goadc")
	window := view.New(application, cfg, *configFlag)
	window.SetOnClosed(stop)
	window.Banner(banner)

	done := make(chan error, 1)
	go func() {
		done <- run(ctx, cfg, dev, cal, report.Multi{logReporter, window})
	}()

	window.ShowAndRun()
	stop()
	if err := <-done; err != nil {
		log.Fatalf("Monitor error: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, dev adc.Device, cal calib.Calibrator, reporter report.Reporter) error {
	m, err := monitor.New(cfg, dev, cal, nil, reporter)
	if err != nil {
		return err
	}

	err = m.Run(ctx)
	stats := m.Stats()
	log.Printf("Stopped after %d cycles (%d abandoned, %d report errors)", stats.Completed, stats.Abandoned, stats.ReportErrors)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
