package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/settings/codec"
)

func newGetCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "get KEY [DEFAULT]",
		Short: "Print the value of KEY, or DEFAULT when it is not set",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var def any
			if len(args) == 2 {
				v, err := parseValue(args[1], asJSON)
				if err != nil {
					return err
				}
				def = v
			}
			v, err := c.app.Settings().Get(cmd.Context(), args[0], def)
			if err != nil {
				return err
			}
			return printValue(cmd, v)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "parse DEFAULT as JSON")
	return cmd
}

func newSetCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Store VALUE under KEY",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseValue(args[1], asJSON)
			if err != nil {
				return err
			}
			return c.app.Settings().Set(cmd.Context(), args[0], v)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "parse VALUE as JSON")
	return cmd
}

func newHasCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "has KEY",
		Short: "Report whether KEY is stored",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := c.app.Settings().Has(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			return nil
		},
	}
}

func newForgetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "forget KEY",
		Short: "Remove KEY and report whether it was stored",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := c.app.Settings().Forget(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), removed)
			return nil
		},
	}
}

func newPutCmd(c *cli) *cobra.Command {
	var (
		asJSON bool
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "put KEY VALUE",
		Short: "Store VALUE under KEY with an expiry (key store repositories only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, err := c.app.KeyStore()
			if err != nil {
				return err
			}
			v, err := parseValue(args[1], asJSON)
			if err != nil {
				return err
			}
			if ttl <= 0 {
				return ks.Forever(cmd.Context(), args[0], v)
			}
			return ks.Put(cmd.Context(), args[0], v, ttl)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "parse VALUE as JSON")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "expiry, at least one minute; 0 stores forever")
	return cmd
}

// newIncrCmd builds "incr" for sign 1 and "decr" for sign -1.
func newIncrCmd(c *cli, sign int) *cobra.Command {
	use, short := "incr KEY [BY]", "Increment the counter at KEY (key store repositories only)"
	if sign < 0 {
		use, short = "decr KEY [BY]", "Decrement the counter at KEY (key store repositories only)"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, err := c.app.KeyStore()
			if err != nil {
				return err
			}
			by := int64(1)
			if len(args) == 2 {
				if by, err = strconv.ParseInt(args[1], 10, 64); err != nil {
					return fmt.Errorf("invalid amount %q: %w", args[1], err)
				}
			}
			var n int64
			if sign < 0 {
				n, err = ks.Decrement(cmd.Context(), args[0], by)
			} else {
				n, err = ks.Increment(cmd.Context(), args[0], by)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the settings table of every database repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Migrate(cmd.Context())
		},
	}
}

// parseValue keeps raw as a string unless asJSON is set.
func parseValue(raw string, asJSON bool) (any, error) {
	if !asJSON {
		return raw, nil
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("invalid JSON value: %w", err)
	}
	return v, nil
}

func printValue(cmd *cobra.Command, v any) error {
	switch x := v.(type) {
	case nil:
		fmt.Fprintln(cmd.OutOrStdout(), "null")
		return nil
	case string:
		fmt.Fprintln(cmd.OutOrStdout(), x)
		return nil
	case codec.Number:
		fmt.Fprintln(cmd.OutOrStdout(), x.String())
		return nil
	}
	b, err := json.Marshal(jsonable(v))
	if err != nil {
		return fmt.Errorf("print %T: %w", v, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

// jsonable rewrites map[any]any (maps read back with non-string keys) into
// map[string]any so encoding/json can print them.
func jsonable(v any) any {
	switch x := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[fmt.Sprint(k)] = jsonable(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = jsonable(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = jsonable(e)
		}
		return out
	}
	return v
}
