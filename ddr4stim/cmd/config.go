package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const envPrefix = "DDR4STIM_"

// loadEnvFile adds the variables of an env file to the environment. Variables
// already set win. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}

// envName returns the variable that sets a flag, for example
// DDR4STIM_MAX_CYCLES for --max-cycles.
func envName(flag string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// applyEnv sets every flag not given on the command line from its variable.
func applyEnv(flags *pflag.FlagSet) error {
	var errs []error

	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			return
		}

		value, ok := os.LookupEnv(envName(f.Name))
		if !ok {
			return
		}

		if err := f.Value.Set(value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", envName(f.Name), err))
		}
	})

	return errors.Join(errs...)
}
