package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/anong-ulam/backend/internal/client"
	"github.com/pageza/anong-ulam/backend/internal/database"
	"github.com/pageza/anong-ulam/backend/internal/logger"
	"github.com/pageza/anong-ulam/backend/internal/types"
)

const usage = `Usage: anong-ulam <command> [flags]

Commands:
  generate   ask Mama for a recipe
  favorites  list saved recipes
  remove     remove a saved recipe by id
  moods      list the moods Mama understands

Run "anong-ulam <command> --help" for the flags of a command.
`

const msgMissingIngredients = "Anak, wala ka namang binigay na ingredients."

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return nil
	}

	v := viper.New()
	v.SetEnvPrefix("ANONG_ULAM")
	v.AutomaticEnv()
	v.SetDefault("server", "http://localhost:8080")
	v.SetDefault("db", defaultStorePath())
	v.SetDefault("speaker", "espeak")
	v.SetDefault("log_level", "warn")

	fs := pflag.NewFlagSet(args[0], pflag.ContinueOnError)
	fs.String("server", v.GetString("server"), "base URL of the recipe service")
	fs.String("db", v.GetString("db"), "path of the local favorites store")
	fs.String("log-level", v.GetString("log_level"), "log level")

	switch args[0] {
	case "generate":
		return runGenerate(ctx, v, fs, args[1:], out)
	case "favorites":
		return withFavorites(v, fs, args[1:], func(favs *client.Favorites) error {
			return listFavorites(favs, out)
		})
	case "remove":
		return withFavorites(v, fs, args[1:], func(favs *client.Favorites) error {
			if fs.NArg() != 1 {
				return errors.New("remove needs exactly one recipe id")
			}
			list, err := favs.Remove(fs.Arg(0))
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d saved recipe(s) left\n", len(list))
			return nil
		})
	case "moods":
		for _, m := range types.Moods {
			fmt.Fprintln(out, m)
		}
		return nil
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runGenerate(ctx context.Context, v *viper.Viper, fs *pflag.FlagSet, args []string, out io.Writer) error {
	ingredients := fs.StringP("ingredients", "i", "", "what is in the ref, comma-separated")
	mood := fs.StringP("mood", "m", string(types.DefaultMood), "mood for today's ulam")
	share := fs.Bool("share", false, "print the share text instead of the full recipe")
	narrate := fs.Bool("narrate", false, "have Mama read the recipe aloud")
	favorite := fs.Bool("favorite", false, "save or unsave the recipe as a favorite")
	fs.String("speaker", v.GetString("speaker"), "espeak-compatible speech command")
	if err := parseFlags(v, fs, args); err != nil {
		return err
	}
	if *ingredients == "" && fs.NArg() > 0 {
		*ingredients = strings.Join(fs.Args(), " ")
	}

	zapLogger, err := newLogger(v)
	if err != nil {
		return err
	}
	defer zapLogger.Sync()

	var favs *client.Favorites
	if *favorite {
		db, err := openStore(v, zapLogger)
		if err != nil {
			return err
		}
		defer database.Close(db)
		favs = client.NewFavorites(client.NewLocalStorage(db))
	}

	var narrator *client.Narrator
	if *narrate {
		narrator = client.NewNarrator(client.ExecSpeaker{Command: v.GetString("speaker")}, zapLogger)
	}

	ctrl := client.NewController(client.NewHTTPClient(v.GetString("server"), nil), narrator, favs, zapLogger)
	recipe, err := ctrl.Submit(ctx, *ingredients, types.Mood(*mood))
	if err != nil {
		if errors.Is(err, client.ErrEmptyIngredients) {
			return errors.New(msgMissingIngredients)
		}
		return errors.New(ctrl.Snapshot().Error)
	}

	if *share {
		fmt.Fprintln(out, client.ShareText(*recipe))
	} else {
		printRecipe(out, recipe)
	}

	if *favorite {
		saved, err := ctrl.ToggleFavorite()
		if err != nil {
			return err
		}
		if saved {
			fmt.Fprintln(out, "\n♥ Saved to favorites")
		} else {
			fmt.Fprintln(out, "\n♡ Removed from favorites")
		}
	}

	if *narrate {
		if err := ctrl.Narrate(nil); err != nil {
			return err
		}
		done := make(chan struct{})
		go func() {
			narrator.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			narrator.Stop()
			narrator.Wait()
		}
	}
	return nil
}

func withFavorites(v *viper.Viper, fs *pflag.FlagSet, args []string, fn func(*client.Favorites) error) error {
	if err := parseFlags(v, fs, args); err != nil {
		return err
	}
	zapLogger, err := newLogger(v)
	if err != nil {
		return err
	}
	defer zapLogger.Sync()

	db, err := openStore(v, zapLogger)
	if err != nil {
		return err
	}
	defer database.Close(db)
	return fn(client.NewFavorites(client.NewLocalStorage(db)))
}

func listFavorites(favs *client.Favorites, out io.Writer) error {
	list, err := favs.Load()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(out, "Wala ka pang paboritong ulam.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDISH\tMOOD\tSAVED")
	for _, r := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.DishName, r.MoodUsed, r.DateSaved)
	}
	return w.Flush()
}

func printRecipe(out io.Writer, r *types.Recipe) {
	fmt.Fprintf(out, "%s\n\n", r.DishName)
	fmt.Fprintf(out, "\"%s\"\n\n", r.MomMessage)
	fmt.Fprintf(out, "Luto: %s | Hirap: %s | Mood: %s\n\n", r.CookingTime, r.Difficulty, r.MoodUsed)
	fmt.Fprintln(out, "Mga kailangan:")
	for _, item := range r.IngredientsList {
		fmt.Fprintf(out, "  - %s\n", item)
	}
	fmt.Fprintln(out, "\nParaan ng pagluto:")
	for i, step := range r.Steps {
		fmt.Fprintf(out, "  %d. %s\n", i+1, step)
	}
}

func parseFlags(v *viper.Viper, fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	fs.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			panic(err)
		}
	})
	return nil
}

func newLogger(v *viper.Viper) (*zap.Logger, error) {
	return logger.New(logger.Config{Level: v.GetString("log_level"), Format: "console", Development: true})
}

func openStore(v *viper.Viper, zapLogger *zap.Logger) (*gorm.DB, error) {
	return database.OpenLocalStore(v.GetString("db"), zapLogger)
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "anong-ulam.db"
	}
	return filepath.Join(dir, "anong-ulam", "local.db")
}
