package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/codepath/internal/curriculum"
	"github.com/abhisek/codepath/internal/logger"
	"github.com/abhisek/codepath/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import the curriculum into the database",
	Long: `Import lessons and questions from a YAML or JSON curriculum file, or the
built-in course when no file is given. The import is skipped unless the
file's version is newer than the installed one, or --force is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		file, _ := cmd.Flags().GetString("file")
		if file == "" {
			file = cfg.CurriculumPath
		}

		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		imported, err := seedCurriculum(cmd.Context(), st, file, force, log)
		if err != nil {
			return err
		}
		if !imported {
			fmt.Println("Curriculum is up to date.")
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().Bool("force", false, "Import even if the installed version is the same or newer")
	seedCmd.Flags().String("file", "", "Curriculum file (.yaml, .yml or .json); default is the built-in course")
}

// seedCurriculum loads the curriculum from path, or the built-in one, and
// imports it when it is newer than what is installed.
func seedCurriculum(ctx context.Context, st *store.Store, path string, force bool, log *logger.Logger) (bool, error) {
	var (
		c   *curriculum.Curriculum
		err error
	)
	if path != "" {
		c, err = curriculum.LoadFile(path)
	} else {
		c, err = curriculum.Default()
	}
	if err != nil {
		return false, fmt.Errorf("load curriculum: %w", err)
	}

	installed, err := st.Curriculum().Version(ctx)
	if err != nil {
		return false, err
	}
	if !force && !curriculum.IsNewer(c.Version, installed) {
		log.Info("curriculum import skipped", "installed", installed, "incoming", c.Version)
		return false, nil
	}

	if err := st.Curriculum().Import(ctx, c); err != nil {
		return false, fmt.Errorf("import curriculum: %w", err)
	}
	log.Info("curriculum imported",
		"title", c.Title,
		"version", c.Version,
		"lessons", len(c.Lessons),
		"questions", len(c.Questions),
	)
	return true, nil
}
