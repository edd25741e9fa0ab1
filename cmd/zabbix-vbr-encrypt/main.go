package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aholiveira/zabbix-VB-R-SQL/internal/utils"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var generateKey bool

	cmd := &cobra.Command{
		Use:   "zabbix-vbr-encrypt",
		Short: "Encrypt a database password for database.password_encrypted",
		Long: `zabbix-vbr-encrypt reads a password from stdin and prints the value to
store in database.password_encrypted. The key is read from ` + utils.EncKeyEnv + `,
from the environment or a .env file in the working directory; the collector
must run with the same key.

  zabbix-vbr-encrypt --generate-key          print a new ` + utils.EncKeyEnv + `
  printf '%s' 's3cret' | zabbix-vbr-encrypt  print the encrypted password`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if generateKey {
				key, err := utils.GenerateKey()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(stdout, key)
				return err
			}

			if err := loadDotEnv(); err != nil {
				return err
			}
			sealer, err := utils.SealerFromEnv()
			if err != nil {
				return err
			}
			password, err := readPassword(stdin)
			if err != nil {
				return err
			}
			sealed, err := sealer.Seal(password)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(stdout, sealed)
			return err
		},
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.Flags().BoolVar(&generateKey, "generate-key", false, "Print a new random "+utils.EncKeyEnv+" and exit")
	return cmd
}

// readPassword takes the first line of r. Only the line ending is stripped.
func readPassword(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	line := string(data)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSuffix(line, "\r")
	if line == "" {
		return "", errors.New("empty password on stdin")
	}
	return line, nil
}

func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	return errors.Wrap(godotenv.Load(".env"), "loading .env")
}
