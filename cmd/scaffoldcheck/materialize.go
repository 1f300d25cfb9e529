package scaffoldcheck

import (
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/scaffoldcheck/pkg/config"
	"github.com/arthur-debert/scaffoldcheck/pkg/copier"
	"github.com/arthur-debert/scaffoldcheck/pkg/errors"
	"github.com/arthur-debert/scaffoldcheck/pkg/params"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type materializeOptions struct {
	templateFlags
	answerFlags

	initRepo bool
}

func newMaterializeCmd(a *app) *cobra.Command {
	var opts materializeOptions

	cmd := &cobra.Command{
		Use:   "materialize <dest>",
		Short: MsgMaterializeShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.materialize(cmd, args[0], opts)
		},
	}

	opts.templateFlags.register(cmd)
	opts.answerFlags.register(cmd)
	cmd.Flags().BoolVar(&opts.initRepo, "init-repo", false, MsgFlagInitRepo)

	return cmd
}

func (a *app) materialize(cmd *cobra.Command, dest string, opts materializeOptions) error {
	overrides := map[string]interface{}{}
	opts.templateFlags.overrides(cmd, overrides)

	cfg, err := config.Load(a.configPath, overrides)
	if err != nil {
		return err
	}
	extra, err := opts.answerFlags.extra(cfg)
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(dest)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput, "invalid destination %s", dest)
	}

	ctx := cmd.Context()
	r := a.newRunner(cmd.ErrOrStderr())
	session, mat, err := a.prepare(ctx, cfg, r)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to remove template snapshot")
		}
	}()

	snap, err := session.Path(ctx)
	if err != nil {
		return err
	}

	answers := params.Params{
		params.ProjectName: cfg.Params.ProjectName,
		params.AuthorName:  cfg.Params.AuthorName,
		params.AuthorEmail: cfg.Params.AuthorEmail,
	}.Merge(extra)

	out, err := mat.Materialize(ctx, snap, abs, copier.Options{
		InitRepo: opts.initRepo,
		Identity: cfg.Identity,
	}, answers)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), MsgMaterialized, out)
	return nil
}
