package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qaca/surakshapath/internal/config"
	"github.com/qaca/surakshapath/internal/secrets"
)

func keyCmd() *cobra.Command {
	key := &cobra.Command{Use: "key", Short: "Manage stored provider API keys"}
	key.AddCommand(keySetCmd(), keyDeleteCmd())
	return key
}

func keySetCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "set <provider>",
		Short:     "Store an API key read from stdin",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{config.ProviderGemini, config.ProviderOpenAI},
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := keyProvider(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Paste the %s API key and press enter: ", provider)
			k, err := readKey(cmd.InOrStdin())
			if err != nil {
				return err
			}
			store, err := secrets.Default()
			if err != nil {
				return err
			}
			if err := store.Set(provider, k); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %s key\n", provider)
			return nil
		},
	}
}

func keyDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <provider>",
		Short: "Remove a stored API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := keyProvider(args[0])
			if err != nil {
				return err
			}
			store, err := secrets.Default()
			if err != nil {
				return err
			}
			if err := store.Delete(provider); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s key\n", provider)
			return nil
		},
	}
}

func keyProvider(arg string) (string, error) {
	p := strings.ToLower(strings.TrimSpace(arg))
	switch p {
	case config.ProviderGemini, config.ProviderOpenAI:
		return p, nil
	}
	return "", fmt.Errorf("provider %q does not take an api key", arg)
}

func readKey(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("no key provided")
	}
	return line, nil
}
