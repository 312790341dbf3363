package cmd

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	rates "github.com/malusev998/privat-rates"
	"github.com/malusev998/privat-rates/fetchers"
	"github.com/malusev998/privat-rates/logger"
	"github.com/malusev998/privat-rates/services"
)

var (
	ErrMissingDays = errors.New("missing number of days")
	ErrInvalidDays = errors.New("number of days is not a number")
	ErrUsage       = errors.New("invalid usage")
)

const (
	missingDaysMessage    = "Please provide the number of days as an argument."
	invalidDaysMessage    = "The argument must be a number."
	daysOutOfRangeMessage = "Please enter the number of days from 1 to 10."
)

var signedInteger = regexp.MustCompile(`^-[0-9]+$`)

type (
	// Config carries what the commands need from outside. Fetcher, Storage
	// and Now are built from the configuration file when left empty.
	Config struct {
		Ctx     context.Context
		Fetcher rates.Fetcher
		Storage []rates.Storage
		Now     func() time.Time
	}

	flags struct {
		debug      bool
		store      bool
		configFile string
	}
)

// parseDays accepts any integer. Values too large for int are clamped,
// which keeps them outside the allowed range.
func parseDays(arg string) (int, error) {
	days, err := strconv.Atoi(strings.TrimSpace(arg))

	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, ErrInvalidDays
	}

	return days, nil
}

// daysArg validates the first positional argument; the rest are ignored.
func daysArg(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return ErrMissingDays
	}

	_, err := parseDays(args[0])

	return err
}

// NormalizeArgs moves a negative day count behind "--" so it is not parsed
// as a shorthand flag.
func NormalizeArgs(args []string) []string {
	normalized := make([]string, 0, len(args)+2)
	var days string

	for i, arg := range args {
		if arg == "--" {
			normalized = append(normalized, "--")
			if days != "" {
				normalized = append(normalized, days)
			}
			return append(normalized, args[i+1:]...)
		}

		if days == "" && signedInteger.MatchString(arg) {
			days = arg
			continue
		}

		normalized = append(normalized, arg)
	}

	if days != "" {
		normalized = append(normalized, "--", days)
	}

	return normalized
}

func run(config *Config, f *flags) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		days, err := parseDays(args[0])
		if err != nil {
			return err
		}

		if days < services.MinDays || days > services.MaxDays {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), daysOutOfRangeMessage)
			return err
		}

		ctx := config.Ctx
		if ctx == nil {
			ctx = context.Background()
		}

		v, err := newViper(f.configFile)
		if err != nil {
			return err
		}

		level := v.GetString("log.level")
		if f.debug {
			level = "debug"
		}

		log := logger.Init(level, cmd.ErrOrStderr())
		options := loadOptions(v)

		fetcher := config.Fetcher
		if fetcher == nil {
			fetcher = fetchers.NewPrivatBankFetcher(fetchers.PrivatBankConfig{
				BaseConfig: fetchers.BaseConfig{
					Ctx:    ctx,
					URL:    options.APIURL,
					Logger: log,
				},
				Timeout: options.APITimeout,
			})
		}

		service := services.ReportService{
			Fetcher: fetcher,
			Logger:  log,
			Now:     config.Now,
		}

		reports, err := service.Collect(ctx, days)
		if err != nil {
			return err
		}

		if err := services.Print(cmd.OutOrStdout(), reports); err != nil {
			return err
		}

		if !f.store {
			return nil
		}

		service.Storage = config.Storage
		if service.Storage == nil {
			storageOptions, err := loadStorageOptions(ctx, v, log)
			if err != nil {
				return err
			}

			storages, err := createStorages(storageOptions)
			if err != nil {
				return err
			}
			defer closeStorages(storages)

			service.Storage = storages
		}

		saved, err := service.Save(reports)
		if err != nil {
			return err
		}

		for name, quotes := range saved {
			log.Infof("Saved %d quotes to %s", len(quotes), name)
		}

		return nil
	}
}

func NewRootCommand(config *Config) *cobra.Command {
	f := &flags{}

	rootCmd := &cobra.Command{
		Use:           "privat-rates <days>",
		Short:         "PrivatBank EUR and USD exchange rates for the last days",
		Version:       "v1.0.0",
		Args:          daysArg,
		RunE:          run(config, f),
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	})

	rootCmd.PersistentFlags().BoolVar(&f.debug, "debug", false, "Debug flag")
	rootCmd.PersistentFlags().StringVar(&f.configFile, "config", "./config.yml", "Path to config file")
	rootCmd.Flags().BoolVar(&f.store, "store", false, "Save fetched rates to the configured storages")

	return rootCmd
}

// ExecuteCommand runs the command and reports its error on stderr, with the
// usage text for argument and flag errors.
func ExecuteCommand(command *cobra.Command) error {
	err := command.Execute()

	if err == nil {
		return nil
	}

	errOut := command.ErrOrStderr()

	switch {
	case errors.Is(err, ErrMissingDays):
		fmt.Fprintln(errOut, missingDaysMessage)
	case errors.Is(err, ErrInvalidDays):
		fmt.Fprintln(errOut, invalidDaysMessage)
	default:
		fmt.Fprintln(errOut, "Error:", err)
	}

	if errors.Is(err, ErrMissingDays) || errors.Is(err, ErrInvalidDays) || errors.Is(err, ErrUsage) {
		fmt.Fprint(errOut, command.UsageString())
	}

	return err
}

func Execute(config *Config, args []string) error {
	command := NewRootCommand(config)
	command.SetArgs(NormalizeArgs(args))

	return ExecuteCommand(command)
}
