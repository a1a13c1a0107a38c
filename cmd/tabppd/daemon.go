package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os/signal"
	"syscall"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	grpcAdapter "github.com/Josinosle/TABPP/internal/adapters/grpc"
	"github.com/Josinosle/TABPP/internal/adapters/logind"
	"github.com/Josinosle/TABPP/internal/adapters/memory"
	"github.com/Josinosle/TABPP/internal/adapters/mock"
	"github.com/Josinosle/TABPP/internal/adapters/profile"
	"github.com/Josinosle/TABPP/internal/adapters/sqlite"
	"github.com/Josinosle/TABPP/internal/adapters/sysfs"
	"github.com/Josinosle/TABPP/internal/adapters/upower"
	"github.com/Josinosle/TABPP/internal/config"
	"github.com/Josinosle/TABPP/internal/domain"
	"github.com/Josinosle/TABPP/internal/engine"
	"github.com/Josinosle/TABPP/internal/ports"
	"github.com/Josinosle/TABPP/pkg/tlsconfig"
)

func runDaemon(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("starting tabppd")

	cfg, err := config.LoadOptional(configPath)
	if err != nil {
		return err
	}

	conn, err := dbus.ConnectSystemBus(dbus.WithSignalHandler(dbus.NewSequentialSignalHandler()))
	if err != nil {
		return fmt.Errorf("connect system bus: %w", err)
	}
	defer conn.Close()

	// Initialize devices
	backlightDev, err := openBacklight(ctx, cfg, conn)
	if err != nil {
		return err
	}
	log.Info().
		Str("backend", cfg.Backlight.Backend).
		Int("max", backlightDev.Max()).
		Msg("initialized backlight")

	sensorDev := openSensor(cfg)
	defer sensorDev.Close()
	sensor := engine.NewAmbientSensor(cfg.Sensor.Device, sensorDev)
	log.Info().Str("backend", cfg.Sensor.Backend).Msg("initialized ambient light sensor")

	applier, err := openProfiles(ctx, cfg, conn)
	if err != nil {
		return err
	}

	controller := engine.NewBrightnessController(backlightDev, sensor, engine.ControllerConfig{
		Scale:     cfg.Transition.Scale,
		Steps:     cfg.Transition.Steps,
		StepDelay: cfg.Transition.StepDelay(),
	})
	poller := engine.NewAmbientPoller(controller, cfg.Interval())
	journal, closeJournal, err := openJournal(cfg.Journal)
	if err != nil {
		return err
	}
	defer closeJournal()

	source := upower.NewSource(conn, cfg.Battery.Device)
	coordinator := engine.NewCoordinator(
		controller,
		poller,
		engine.NewProfileSwitcher(applier, cfg.Profile.AC, cfg.Profile.Battery),
		source,
		source.BatteryPath(),
		journal,
	)

	if cfg.GRPC.Listen != "" {
		srv, err := serveStatus(cfg.GRPC, coordinator, journal)
		if err != nil {
			return err
		}
		defer srv.GracefulStop()
	}

	events, err := source.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to upower: %w", err)
	}

	err = coordinator.Run(ctx, events)
	log.Info().Msg("shutting down...")
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func openBacklight(ctx context.Context, cfg config.Config, conn *dbus.Conn) (*engine.BacklightDevice, error) {
	var dev ports.Backlight
	switch cfg.Backlight.Backend {
	case config.BackendMock:
		dev = mock.NewFakeBacklight(1000, 500)
	case config.BackendLogind:
		reader := sysfs.NewBacklight(cfg.Backlight.Device)
		dev = logind.NewBacklight(conn, cfg.Backlight.Session, reader.Name(), reader)
	default:
		dev = sysfs.NewBacklight(cfg.Backlight.Device)
	}
	return engine.NewBacklightDevice(ctx, cfg.Backlight.Device, dev)
}

func openSensor(cfg config.Config) ports.AmbientLightSensor {
	if cfg.Sensor.Backend == config.BackendMock {
		return mock.NewFakeSensor(3, 1)
	}
	return sysfs.NewLightSensor(cfg.Sensor.Device, cfg.Sensor.Attribute)
}

func openProfiles(ctx context.Context, cfg config.Config, conn *dbus.Conn) (ports.ProfileApplier, error) {
	switch cfg.Profile.Backend {
	case config.BackendMock:
		log.Info().Msg("initialized mock profile applier")
		return mock.NewFakeProfiles(), nil
	case config.BackendPowerProfile:
		daemon := profile.NewPowerProfiles(conn)
		available, err := daemon.Available(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("could not list power profiles")
			return daemon, nil
		}
		for _, name := range []string{cfg.Profile.AC, cfg.Profile.Battery} {
			if !contains(available, name) {
				log.Warn().Str("profile", name).Strs("available", available).Msg("profile not offered by power-profiles-daemon")
			}
		}
		log.Info().Strs("available", available).Msg("initialized power-profiles-daemon applier")
		return daemon, nil
	default:
		cmd, err := profile.ParseCommand(cfg.Profile.Command, profile.DefaultCommandTimeout)
		if err != nil {
			return nil, err
		}
		log.Info().Str("command", cfg.Profile.Command).Msg("initialized command profile applier")
		return cmd, nil
	}
}

func openJournal(cfg config.JournalConfig) (domain.TransitionRepository, func(), error) {
	if cfg.Backend == config.BackendSQLite {
		j, err := sqlite.NewTransitionJournal(cfg.Path, cfg.Capacity)
		if err != nil {
			return nil, nil, fmt.Errorf("open journal %s: %w", cfg.Path, err)
		}
		log.Info().Str("db_path", cfg.Path).Msg("initialized SQLite transition journal")
		return j, func() { j.Close() }, nil
	}
	log.Info().Int("capacity", cfg.Capacity).Msg("initialized in-memory transition journal")
	return memory.NewTransitionJournal(cfg.Capacity), func() {}, nil
}

func serveStatus(cfg config.GRPCConfig, provider grpcAdapter.StatusProvider, journal domain.TransitionRepository) (*grpc.Server, error) {
	// Configure TLS if certificates are provided
	var serverOpts []grpc.ServerOption
	if cfg.TLSCert != "" {
		tlsCfg, err := tlsconfig.LoadServerTLS(cfg.TLSCert, cfg.TLSKey, cfg.TLSCA)
		if err != nil {
			return nil, fmt.Errorf("load TLS config: %w", err)
		}
		serverOpts = append(serverOpts, grpc.Creds(credentials.NewTLS(tlsCfg)))
		log.Info().Msg("mTLS enabled")
	} else {
		log.Warn().Msg("grpc.tls_cert not set, serving status without TLS")
	}

	srv := grpc.NewServer(serverOpts...)
	grpcAdapter.RegisterStatusServer(srv, grpcAdapter.NewStatusHandler(provider, journal))

	listener, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.Listen, err)
	}
	log.Info().Str("addr", listener.Addr().String()).Msg("status server listening")

	go func() {
		if err := srv.Serve(listener); err != nil {
			log.Error().Err(err).Msg("status server stopped")
		}
	}()
	return srv, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
