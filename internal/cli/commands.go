package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/flashdeck/internal/ai"
	"github.com/example/flashdeck/internal/bot"
	"github.com/example/flashdeck/internal/keystore"
	"github.com/example/flashdeck/internal/state"
	"github.com/example/flashdeck/internal/study"
	"github.com/example/flashdeck/internal/vocabulary"
	"github.com/spf13/cobra"
)

func newBotCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			if err := a.config.ValidateBot(); err != nil {
				return err
			}
			generator, err := a.generator()
			if err != nil {
				return err
			}
			if generator == nil {
				a.log.Info("AI generation disabled, no API key configured")
			}

			b, err := bot.New(&bot.BotConfig{
				Token:              a.config.Bot.Token,
				Debug:              a.config.Bot.Debug,
				Rate:               a.config.Bot.Rate,
				QuestionTime:       a.config.Quiz.QuestionTime(),
				GenerationCooldown: a.config.AI.Cooldown,
				RemindersEnabled:   a.config.Reminder.Enabled,
				ReminderHour:       a.config.Reminder.Hour,
				MaxImportSize:      bot.DefaultConfig().MaxImportSize,
			}, a.store, generator, a.log)
			if err != nil {
				return err
			}
			return b.Run(cmd.Context())
		}),
	}
}

func newImportCommand() *cobra.Command {
	var formatName string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import vocabulary from a csv, json or xlsx file",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			path := args[0]
			if formatName == "" {
				formatName = path
			}
			format, err := vocabulary.ParseFormat(formatName)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			result, err := a.controller(cmd.Context()).Import(cmd.Context(), format, data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries from %s\n", result.Imported, path)
			return nil
		}),
	}
	cmd.Flags().StringVar(&formatName, "format", "", "file format, guessed from the extension when empty")
	return cmd
}

func newExportCommand() *cobra.Command {
	var formatName, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all vocabulary of the profile",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			format, err := vocabulary.ParseFormat(formatName)
			if err != nil {
				return err
			}
			data, err := a.controller(cmd.Context()).Export(format)
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return err
			}
			a.log.Info("exported vocabulary", "file", out, "format", format)
			return nil
		}),
	}
	cmd.Flags().StringVar(&formatName, "format", string(vocabulary.FormatCSV), "csv, json or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, standard output when empty")
	return cmd
}

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the learning progress of the profile",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			printOverview(cmd.OutOrStdout(), a.controller(cmd.Context()).Overview())
			return nil
		}),
	}
}

func newProfilesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the learner profiles and chats stored in the database",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			lister, ok := a.store.(keystore.Lister)
			if !ok {
				return fmt.Errorf("store %s cannot list keys", a.config.Store.Driver)
			}
			profiles, err := state.Profiles(cmd.Context(), lister)
			if err != nil {
				return err
			}
			for _, profile := range profiles {
				fmt.Fprintln(cmd.OutOrStdout(), profile)
			}
			return nil
		}),
	}
}

func newGenerateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate example sentences with AI and add them to the profile",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			generator, err := a.generator()
			if err != nil {
				return err
			}
			if generator == nil {
				return ai.ErrNotConfigured
			}

			categories, err := generator.Generate(cmd.Context())
			if err != nil {
				return err
			}
			result, err := a.controller(cmd.Context()).ImportGenerated(cmd.Context(), ai.MergeCategories(categories))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %d generated flashcards, skipped %d\n", result.Imported, result.Skipped)
			return nil
		}),
	}
}

func printOverview(w io.Writer, o study.Overview) {
	name := o.DisplayName
	if name == "" {
		name = "(no name)"
	}
	fmt.Fprintf(w, "Learner:        %s\n", name)
	fmt.Fprintf(w, "Cards:          %d\n", o.TotalCards)
	fmt.Fprintf(w, "Studied cards:  %d\n", o.StudiedCards)
	fmt.Fprintf(w, "Need practice:  %d\n", o.NeedPractice)
	fmt.Fprintf(w, "Reviews:        %d\n", o.TotalReviews)
	fmt.Fprintf(w, "Accuracy:       %d%%\n", o.Accuracy)
	fmt.Fprintf(w, "Favorites:      %d\n", o.Favorites)
	fmt.Fprintf(w, "Imported words: %d\n", o.CustomEntries)
	if !o.LastImport.IsZero() {
		fmt.Fprintf(w, "Last import:    %s\n", o.LastImport.UTC().Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(w, "Session id:     %s\n", o.Session.ID)
	fmt.Fprintf(w, "Session:        %d seen, %d correct, %d incorrect (%d%%)\n",
		o.Session.Seen, o.Session.Correct, o.Session.Incorrect, o.SessionAccuracy)

	fmt.Fprintln(w, "Last 7 days:")
	for _, p := range o.History {
		fmt.Fprintf(w, "  %s %-20s %d/%d\n", p.Day, strings.Repeat("#", min(p.Seen, 20)), p.Correct, p.Seen)
	}
}
