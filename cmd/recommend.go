package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/career-navigator/internal/ai"
	"github.com/spigell/career-navigator/internal/catalog"
	"github.com/spigell/career-navigator/internal/export"
	"github.com/spigell/career-navigator/internal/logger"
	"github.com/spigell/career-navigator/internal/navigator"
	"github.com/spigell/career-navigator/internal/profile"
	"github.com/spigell/career-navigator/internal/recommend"
)

const (
	PromptExit = "Exit"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend career paths for a profile file or a stored user",
	Run: func(cmd *cobra.Command, _ []string) {
		runRecommend(cmd)
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringP("profile", "p", "", "profile file in YAML or JSON format")
	recommendCmd.Flags().StringP("user-id", "u", "", "id of a stored user; recommendations are read from and saved to storage")
	recommendCmd.Flags().StringSlice("titles", nil, "career titles the model may choose from (default is the whole catalog)")
	recommendCmd.Flags().StringP("xlsx", "x", "", "export recommendations and roadmaps to the given xlsx file")
	recommendCmd.Flags().Bool("no-prompt", false, "do not open the interactive roadmap browser")
}

func runRecommend(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	profilePath, _ := cmd.Flags().GetString("profile")
	userID, _ := cmd.Flags().GetString("user-id")
	titles, _ := cmd.Flags().GetStringSlice("titles")
	xlsxPath, _ := cmd.Flags().GetString("xlsx")
	noPrompt, _ := cmd.Flags().GetBool("no-prompt")

	if profilePath == "" && userID == "" {
		logger.Fatal("either --profile or --user-id is required")
	}

	comps, err := setup(ctx, config, logger)
	if err != nil {
		logger.Fatal("preparing components", zap.Error(err))
	}
	defer comps.Close()

	p, err := resolveProfile(ctx, comps, profilePath, userID)
	if err != nil {
		logger.Fatal("loading the profile", zap.Error(err))
	}

	suggested := recommend.Recommend(p, comps.catalog)
	logger.Info("rule-based suggestions", zap.Strings("careers", suggested))

	resp, err := comps.navigator.Recommend(ctx, navigator.Request{Profile: p, UserID: userID, Titles: titles})
	if err != nil {
		logger.Fatal("getting recommendations", zap.Error(err))
	}

	logger.Info("got recommendations", zap.Int("count", len(resp.Recommendations)), zap.Bool("from_cache", resp.FromCache))
	printRecommendations(resp.Recommendations)

	if xlsxPath != "" {
		path, err := export.ToExcel(p, resp.Recommendations, comps.catalog, xlsxPath)
		if err != nil {
			logger.Fatal("exporting recommendations", zap.Error(err))
		}
		logger.Info("exported recommendations", zap.String("filename", path))
	}

	if noPrompt {
		return
	}

	if err := browseRoadmaps(comps.catalog, resp.Recommendations, suggested); err != nil && !errors.Is(err, promptui.ErrInterrupt) {
		logger.Fatal("exiting", zap.Error(err))
	}
}

func resolveProfile(ctx context.Context, comps *components, path, userID string) (*profile.UserProfile, error) {
	if path != "" {
		return profile.Load(path)
	}
	if comps.store == nil {
		return nil, errors.New("--user-id requires storage to be configured")
	}
	return comps.store.GetProfile(ctx, userID)
}

func printRecommendations(recs []ai.Recommendation) {
	for i, rec := range recs {
		fmt.Printf("%d. %s (match %d%%)\n", i+1, rec.CareerPath, rec.MatchScore)
		fmt.Printf("   %s\n", rec.Reasoning)
		fmt.Printf("   timeline: %s\n", rec.TimelineEstimate)
		if len(rec.StrengthAreas) > 0 {
			fmt.Printf("   strengths: %s\n", strings.Join(rec.StrengthAreas, ", "))
		}
		if len(rec.SkillGaps) > 0 {
			fmt.Printf("   skill gaps: %s\n", strings.Join(rec.SkillGaps, ", "))
		}
		for _, step := range rec.NextSteps {
			fmt.Printf("   - %s\n", step)
		}
	}
}

// browseRoadmaps lets the user open roadmaps of recommended and suggested careers until Exit is chosen.
func browseRoadmaps(c *catalog.Catalog, recs []ai.Recommendation, suggested []string) error {
	items := make([]string, 0, len(recs)+len(suggested)+1)
	seen := make(map[string]struct{})
	add := func(title string) {
		if _, ok := seen[title]; ok {
			return
		}
		if _, ok := c.ByTitle(title); !ok {
			return
		}
		seen[title] = struct{}{}
		items = append(items, title)
	}

	for _, rec := range recs {
		add(rec.CareerPath)
	}
	for _, id := range suggested {
		if path, ok := c.ByID(id); ok {
			add(path.Title)
		}
	}

	prompt := promptui.Select{
		Label: "Choose a career to see its roadmap",
		Items: append(items, PromptExit),
	}

	for {
		_, selected, err := prompt.Run()
		if err != nil {
			return err
		}
		if selected == PromptExit {
			return nil
		}

		path, _ := c.ByTitle(selected)
		printRoadmap(os.Stdout, path)
	}
}
