package scaffoldcheck

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/arthur-debert/scaffoldcheck/pkg/config"
	"github.com/arthur-debert/scaffoldcheck/pkg/copier"
	"github.com/arthur-debert/scaffoldcheck/pkg/errors"
	"github.com/arthur-debert/scaffoldcheck/pkg/report"
	"github.com/arthur-debert/scaffoldcheck/pkg/runner"
	"github.com/arthur-debert/scaffoldcheck/pkg/scenarios"
	"github.com/arthur-debert/scaffoldcheck/pkg/snapshot"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type runOptions struct {
	templateFlags
	answerFlags

	minArtifacts int
	format       string
	keep         bool
	stream       bool
}

func newRunCmd(a *app) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:       "run [scenario...]",
		Short:     MsgRunShort,
		Long:      MsgRunLong,
		ValidArgs: scenarioNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, args, opts)
		},
	}

	opts.templateFlags.register(cmd)
	opts.answerFlags.register(cmd)
	cmd.Flags().IntVar(&opts.minArtifacts, "min-artifacts", 0, MsgFlagMinArtifacts)
	cmd.Flags().StringVarP(&opts.format, "format", "f", "auto", MsgFlagFormat)
	cmd.Flags().BoolVar(&opts.keep, "keep", false, MsgFlagKeep)
	cmd.Flags().BoolVar(&opts.stream, "stream", false, MsgFlagStream)

	return cmd
}

func (a *app) run(cmd *cobra.Command, args []string, opts runOptions) error {
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	// JSON consumers get a document even when nothing ran
	fail := func(err error) error {
		if format == report.FormatJSON {
			if rerr := report.RenderError(cmd.OutOrStdout(), format, err); rerr != nil {
				log.Warn().Err(rerr).Msg("Failed to render error")
			}
		}
		return err
	}

	overrides := map[string]interface{}{}
	opts.templateFlags.overrides(cmd, overrides)
	if cmd.Flags().Changed("min-artifacts") {
		overrides["build.min_artifacts"] = opts.minArtifacts
	}

	cfg, err := config.Load(a.configPath, overrides)
	if err != nil {
		return fail(err)
	}
	log.Debug().Str("config", cfg.String()).Msg("Configuration loaded")

	extra, err := opts.answerFlags.extra(cfg)
	if err != nil {
		return fail(err)
	}

	names := args
	if len(names) == 0 {
		names = cfg.Scenarios.Enabled
	}
	selected, err := scenarios.Select(names)
	if err != nil {
		return fail(err)
	}

	ctx := cmd.Context()
	r := a.newRunner(cmd.ErrOrStderr())

	session, mat, err := a.prepare(ctx, cfg, r)
	if err != nil {
		return fail(err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to remove template snapshot")
		}
	}()

	env := scenarios.NewEnv(cfg, session, mat, r)
	env.Extra = extra
	env.KeepOutputs = opts.keep
	env.Stream = opts.stream

	rep := scenarios.Run(ctx, env, selected)

	out := cmd.OutOrStdout()
	doc := report.NewDocument(session.TemplateRoot(), session.Tag(), rep)
	if err := report.Render(out, resolveFormat(format, out), doc); err != nil {
		return err
	}

	if !rep.OK() {
		return errors.Newf(errors.ErrAssertion, MsgErrScenariosFailed, rep.Failed(), len(rep.Results))
	}
	return nil
}

// prepare builds the snapshot session and a materializer for the detected
// copier flavor. The caller closes the session.
func (a *app) prepare(ctx context.Context, cfg *config.Config, r runner.CommandRunner) (*snapshot.Session, *copier.Materializer, error) {
	root, err := filepath.Abs(cfg.Template.Root)
	if err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid template root %s", cfg.Template.Root)
	}

	flavor, ver, err := copier.DetectFlavor(ctx, r, cfg.Tools.Copier)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("copier", ver).Str("flavor", flavor.String()).Msg("Detected copier")

	session := snapshot.NewSession(root, snapshot.Options{
		Runner:    r,
		GitBinary: cfg.Tools.Git,
		Tag:       cfg.Template.Tag,
		Identity:  cfg.Identity,
	})
	return session, copier.NewMaterializer(r, cfg.Tools.Copier, cfg.Tools.Git, flavor), nil
}

func resolveFormat(f report.Format, out io.Writer) report.Format {
	if file, ok := out.(*os.File); ok {
		return f.Resolve(file)
	}
	if f == report.FormatAuto {
		return report.FormatText
	}
	return f
}

func scenarioNames() []string {
	all := scenarios.All()
	names := make([]string, 0, len(all))
	for _, s := range all {
		names = append(names, s.Name())
	}
	return names
}
