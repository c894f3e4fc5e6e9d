package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "ztimer"

// checkEnvironmentVariables sets every flag not given on the command line
// from ZTIMER_<FLAG> or ZTIMER_<COMMAND>_<FLAG>, the latter winning
func checkEnvironmentVariables(cmd *cobra.Command) error {
	var errs []string

	prefixes := []string{envPrefix}
	if cmd.Name() != RootCommand.Name() {
		prefixes = append(prefixes, envPrefix+"_"+cmd.Name())
	}

	for _, prefix := range prefixes {
		v := viper.New()
		v.SetEnvPrefix(prefix)
		v.AutomaticEnv()

		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if f.Changed || !v.IsSet(key) {
				return
			}
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", v.Get(key))); err != nil {
				errs = append(errs, err.Error())
			}
			// Set marks the flag changed; later prefixes still override
			f.Changed = false
		})
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("error mapping environment variables to flags: %s", strings.Join(errs, "; "))
}
