// Command si5326ctl gives raw register access to a Si5326 clock multiplier on
// an I2C bus and plays vendor generated register maps out to it.
//
// Usage:
//
//	si5326ctl [flags] <command> [args]
//
// Commands:
//
//	probe                 attach and report the reset value check
//	read <addr>           select and read one register
//	write <addr> 0x<val>  write one register
//	load [-dry-run] [-skip a,b] <map>  play a register map
//	dump [from] [to]      read a register range
//	console               interactive register prompt
//	serve                 serve the line protocol on a unix socket and/or tty
//
// Examples:
//
//	# write the frequency plan exported by the vendor tool
//	si5326ctl -bus 1 -addr 0x68 load plan.txt
//
//	# check the chip came up at its reset values, fail otherwise
//	si5326ctl -strict -reset-chip gpiochip0 -reset-line 17 probe
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/mbalug7/go-si5326/pkg/common"
	"github.com/mbalug7/go-si5326/pkg/config"
	"github.com/mbalug7/go-si5326/pkg/console"
	"github.com/mbalug7/go-si5326/pkg/hal"
	"github.com/mbalug7/go-si5326/pkg/memory"
	"github.com/mbalug7/go-si5326/pkg/periphbus"
	"github.com/mbalug7/go-si5326/pkg/regmap"
	"github.com/mbalug7/go-si5326/pkg/si5326"
	"github.com/mbalug7/go-si5326/pkg/smbus"
)

const usage = `si5326ctl - Si5326 register access tool

Usage:
  si5326ctl [flags] <command> [args]

Commands:
  probe                              Attach and report the reset value check
  read <addr>                        Select and read one register
  write <addr> 0x<val>               Write one register
  load [-dry-run] [-skip a,b] <map>  Play a register map
  dump [from] [to]                   Read a register range
  console                            Interactive register prompt
  serve                              Serve the line protocol (socket and/or tty)

Flags:
`

var (
	configFile string
	flagCfg    = config.Default()
	address    uint
)

func init() {
	flag.StringVar(&configFile, "config", "", "Configuration file path")
	flag.StringVar(&flagCfg.Transport, "transport", flagCfg.Transport, "Bus transport: smbus, periph, sim")
	flag.StringVar(&flagCfg.Bus, "bus", flagCfg.Bus, "I2C bus (number for smbus, name for periph)")
	flag.UintVar(&address, "addr", config.DefaultAddress, "I2C slave address")
	flag.BoolVar(&flagCfg.StrictProbe, "strict", false, "Fail when registers 0..3 are not at their reset values")
	flag.StringVar(&flagCfg.LogLevel, "log-level", flagCfg.LogLevel, "Log level: debug, info, warn, error")
	flag.StringVar(&flagCfg.Reset.Chip, "reset-chip", "", "GPIO chip of the RST line, empty disables the reset pulse")
	flag.IntVar(&flagCfg.Reset.Line, "reset-line", 0, "GPIO line offset of the RST line")
	flag.StringVar(&flagCfg.Serve.Socket, "socket", "", "Unix socket path for serve")
	flag.StringVar(&flagCfg.Serve.TTY, "tty", "", "Serial tty for serve")
	flag.IntVar(&flagCfg.Serve.Baud, "baud", flagCfg.Serve.Baud, "Serial baud rate for serve")

	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	addr, err := slaveAddress(address)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	flagCfg.Address = addr

	cfg, err := resolveConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logger := setupLogging(cfg.LogLevel)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = run(ctx, cfg, logger, args[0], args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

// slaveAddress checks the -addr value before it is narrowed to the config field.
func slaveAddress(v uint) (uint16, error) {
	if v > 0x7f {
		return 0, fmt.Errorf("address must be a 7-bit i2c address, got 0x%x", v)
	}
	return uint16(v), nil
}

// resolveConfig loads the config file, then applies flags that were set explicitly.
func resolveConfig() (config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return cfg, err
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "transport":
			cfg.Transport = flagCfg.Transport
		case "bus":
			cfg.Bus = flagCfg.Bus
		case "addr":
			cfg.Address = flagCfg.Address
		case "strict":
			cfg.StrictProbe = flagCfg.StrictProbe
		case "log-level":
			cfg.LogLevel = flagCfg.LogLevel
		case "reset-chip":
			cfg.Reset.Chip = flagCfg.Reset.Chip
		case "reset-line":
			cfg.Reset.Line = flagCfg.Reset.Line
		case "socket":
			cfg.Serve.Socket = flagCfg.Serve.Socket
		case "tty":
			cfg.Serve.TTY = flagCfg.Serve.TTY
		case "baud":
			cfg.Serve.Baud = flagCfg.Serve.Baud
		}
	})
	return cfg, cfg.Validate()
}

func setupLogging(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, cmd string, args []string) error {
	switch cmd {
	case "-h", "-help", "--help", "help":
		flag.Usage()
		return nil
	case "probe", "read", "write", "load", "dump", "console", "serve":
	default:
		return fmt.Errorf("unknown command: %s (run with -help for commands)", cmd)
	}

	broker, err := attach(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		err := broker.Detach()
		if err != nil {
			log.Printf("failed to detach: %s", err)
		}
	}()

	switch cmd {
	case "probe":
		return runProbe(broker)
	case "read":
		return runRead(broker, args)
	case "write":
		return runWrite(broker, args)
	case "load":
		return runLoad(broker, logger, args)
	case "dump":
		return runDump(broker, args)
	case "console":
		return runConsole(ctx, broker)
	default:
		return runServe(ctx, broker, cfg, logger)
	}
}

func openTransport(cfg config.Config) (hal.Transport, error) {
	switch cfg.Transport {
	case config.TransportSMBus:
		bus, err := cfg.BusNumber()
		if err != nil {
			return nil, err
		}
		return smbus.Open(bus, cfg.Address)
	case config.TransportPeriph:
		return periphbus.Open(cfg.Bus, cfg.Address)
	case config.TransportSim:
		return memory.NewChip(), nil
	default:
		return nil, fmt.Errorf("unknown transport: %s", cfg.Transport)
	}
}

func attach(cfg config.Config, logger *slog.Logger) (*si5326.Broker, error) {
	if cfg.Reset.Enabled() {
		rst, err := common.NewResetLine(cfg.Reset.Chip, cfg.Reset.Line, cfg.Reset.Pulse, cfg.Reset.Settle)
		if err != nil {
			return nil, err
		}
		err = rst.Pulse()
		closeErr := rst.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to reset si5326: %w", err)
		}
		if closeErr != nil {
			log.Printf("failed to release reset line: %s", closeErr)
		}
	}

	tr, err := openTransport(cfg)
	if err != nil {
		return nil, err
	}
	broker, err := si5326.Attach(tr,
		si5326.WithLogger(logger.With("bus", cfg.Bus, "addr", fmt.Sprintf("0x%02x", cfg.Address))),
		si5326.WithStrictProbe(cfg.StrictProbe),
	)
	if err != nil {
		if closer, ok := tr.(io.Closer); ok {
			closer.Close()
		}
		return nil, err
	}
	return broker, nil
}

func runProbe(broker *si5326.Broker) error {
	mismatches := broker.Mismatches()
	if len(mismatches) == 0 {
		fmt.Printf("si5326 found with reset values in first %d regs\n", len(si5326.ResetFingerprint))
		return nil
	}
	for _, m := range mismatches {
		fmt.Println(m)
	}
	return nil
}

func runRead(broker *si5326.Broker, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: read <addr>")
	}
	err := broker.Store(args[0])
	if err != nil {
		return err
	}
	out, err := broker.Show()
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func runWrite(broker *si5326.Broker, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: write <addr> 0x<val>")
	}
	return broker.Store(strings.Join(args, " "))
}

func runLoad(broker *si5326.Broker, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("load", flag.ContinueOnError)
	dryRun := fs.Bool("dry-run", false, "Log writes instead of issuing them")
	skip := fs.String("skip", "", "Comma separated registers to leave out")
	err := fs.Parse(args)
	if err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: load [-dry-run] [-skip a,b] <map>")
	}

	entries, err := regmap.ParseFile(fs.Arg(0))
	if err != nil {
		return err
	}
	skipped, err := parseAddressList(*skip)
	if err != nil {
		return err
	}

	n, err := regmap.NewLoader(broker).Logger(logger).Entries(entries).Skip(skipped...).DryRun(*dryRun).Apply()
	if err != nil {
		return err
	}
	fmt.Printf("wrote %d registers from %s\n", n, fs.Arg(0))
	return nil
}

func parseAddressList(s string) ([]hal.RegAddress, error) {
	if s == "" {
		return nil, nil
	}
	var out []hal.RegAddress
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.ParseUint(strings.TrimSpace(part), 10, strconv.IntSize)
		if err != nil {
			return nil, fmt.Errorf("invalid register %q in skip list", part)
		}
		out = append(out, hal.RegAddress(v))
	}
	return out, nil
}

func runDump(broker *si5326.Broker, args []string) error {
	from, to, err := console.ParseRange(args)
	if err != nil {
		return err
	}
	regs, err := broker.Dump(from, to)
	for _, r := range regs {
		fmt.Println(r)
	}
	return err
}

func runConsole(ctx context.Context, broker *si5326.Broker) error {
	c, err := console.NewConsole(broker)
	if err != nil {
		return err
	}
	log.SetOutput(c.Stdout())
	c.Run(ctx)
	return nil
}

func runServe(ctx context.Context, broker *si5326.Broker, cfg config.Config, logger *slog.Logger) error {
	if cfg.Serve.Socket == "" && cfg.Serve.TTY == "" {
		return errors.New("serve needs a socket and/or a tty")
	}
	srv := console.NewServer(broker, logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	if cfg.Serve.Socket != "" {
		_ = os.Remove(cfg.Serve.Socket)
		ln, err := net.Listen("unix", cfg.Serve.Socket)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.Serve.Socket, err)
		}
		defer os.Remove(cfg.Serve.Socket)
		logger.Info("serving register protocol", "socket", cfg.Serve.Socket)
		wg.Add(1)
		go func() {
			defer wg.Done()
			errCh <- srv.Serve(ctx, ln)
		}()
	}

	if cfg.Serve.TTY != "" {
		port, err := common.OpenSerialChannel(cfg.Serve.TTY, cfg.Serve.Baud)
		if err != nil {
			cancel()
			wg.Wait()
			return err
		}
		defer port.Close()
		logger.Info("serving register protocol", "tty", cfg.Serve.TTY, "baud", cfg.Serve.Baud)
		wg.Add(1)
		go func() {
			defer wg.Done()
			errCh <- srv.ServeConn(ctx, port)
		}()
	}

	wg.Wait()
	close(errCh)
	var errs []error
	for err := range errCh {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
