package cli

import (
	"fmt"
	"io"
	"net/url"

	"github.com/spf13/cobra"

	"quizlink-service/internal/app"
	"quizlink-service/internal/config"
	"quizlink-service/internal/integrity"
)

// NewVerifyCmd checks a result link against the configured secret.
func NewVerifyCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <result-url>",
		Short: "Check whether a result URL carries an authentic score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return verifyResult(cmd.OutOrStdout(), integrity.NewCodec(cfg.Integrity.Secret), args[0])
		},
	}
}

func verifyResult(out io.Writer, codec *integrity.Codec, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	q := u.Query()
	token := integrity.Token{
		Result: q.Get(app.ParamResult),
		Rand:   q.Get(app.ParamResultRand),
		Hash:   q.Get(app.ParamResultHash),
	}
	score, ok := codec.Score(token)
	if !ok {
		return fmt.Errorf("result for %q does not verify", q.Get(app.ParamTestName))
	}
	_, err = fmt.Fprintf(out, "verified: %s scored %d\n", q.Get(app.ParamTestName), score)
	return err
}
