package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smartbuddy/matching-api/internal/dto"
	"github.com/smartbuddy/matching-api/internal/matching"
	"github.com/smartbuddy/matching-api/internal/models"
	"github.com/smartbuddy/matching-api/internal/repository"
	"github.com/smartbuddy/matching-api/internal/scheduling"
	"github.com/smartbuddy/matching-api/internal/service"
	"github.com/smartbuddy/matching-api/pkg/cache"
	"github.com/smartbuddy/matching-api/pkg/config"
	"github.com/smartbuddy/matching-api/pkg/export"
	"github.com/smartbuddy/matching-api/pkg/logger"
)

var (
	inputFlag string
	rootCmd   = &cobra.Command{
		Use:   "matcher",
		Short: "Study-partner matching and session scheduling over profile fixtures",
	}
)

type matcherApp struct {
	matcher   *service.MatcherService
	metrics   *service.MetricsService
	cacheRepo *repository.CacheRepository
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	app := buildApp(cfg, logr)
	if app.cacheRepo != nil {
		defer app.cacheRepo.Close() //nolint:errcheck
	}

	if cfg.Metrics.Addr != "" {
		go serveMetrics(cfg.Metrics.Addr, app.metrics, logr)
	}

	rootCmd.PersistentFlags().StringVarP(&inputFlag, "input", "i", "profiles.json", "Path to a JSON array of stored profiles")

	matchesCmd := &cobra.Command{
		Use:   "matches",
		Short: "Rank compatible partners for one student",
		RunE: func(cmd *cobra.Command, args []string) error {
			studentID, _ := cmd.Flags().GetString("student")
			minScore, _ := cmd.Flags().GetFloat64("min-score")
			maxResults, _ := cmd.Flags().GetInt("max-results")
			withScheduling, _ := cmd.Flags().GetBool("scheduling")

			profiles, err := loadProfiles(inputFlag)
			if err != nil {
				return err
			}
			result, err := app.matcher.FindMatchesForStudent(cmd.Context(), dto.MatchQuery{
				StudentID:         studentID,
				Profiles:          profiles,
				MinScore:          minScore,
				MaxResults:        maxResults,
				IncludeScheduling: withScheduling,
			})
			if err != nil {
				return err
			}
			return writeJSON(os.Stdout, result)
		},
	}
	matchesCmd.Flags().StringP("student", "s", "", "Student ID to match (required)")
	matchesCmd.Flags().Float64("min-score", 0, "Minimum total compatibility score")
	matchesCmd.Flags().Int("max-results", 0, "Maximum number of matches to return")
	matchesCmd.Flags().Bool("scheduling", false, "Include scheduling feasibility analysis")
	_ = matchesCmd.MarkFlagRequired("student")
	rootCmd.AddCommand(matchesCmd)

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Build a study-session schedule for the whole group",
		RunE: func(cmd *cobra.Command, args []string) error {
			optimize, _ := cmd.Flags().GetBool("optimize")
			format, _ := cmd.Flags().GetString("export")

			profiles, err := loadProfiles(inputFlag)
			if err != nil {
				return err
			}
			resp, err := app.matcher.CreateStudyGroupSchedule(cmd.Context(), dto.GroupScheduleRequest{
				Profiles: profiles,
				Optimize: optimize,
			})
			if err != nil {
				return err
			}
			if format != "" {
				path, err := exportSchedule(resp, format, cfg.Export.OutputDir)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "schedule exported to %s\n", path)
			}
			return writeJSON(os.Stdout, resp)
		},
	}
	scheduleCmd.Flags().Bool("optimize", true, "Run the local-search optimization pass")
	scheduleCmd.Flags().String("export", "", "Also export the schedule (csv or pdf)")
	rootCmd.AddCommand(scheduleCmd)

	matrixCmd := &cobra.Command{
		Use:   "matrix",
		Short: "Compute the pairwise compatibility matrix for the group",
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, err := loadProfiles(inputFlag)
			if err != nil {
				return err
			}
			resp, err := app.matcher.GetCompatibilityMatrix(cmd.Context(), dto.MatrixRequest{Profiles: profiles})
			if err != nil {
				return err
			}
			return writeJSON(os.Stdout, resp)
		},
	}
	rootCmd.AddCommand(matrixCmd)

	runErr := rootCmd.ExecuteContext(context.Background())
	logSnapshot(logr, app.metrics.Snapshot())
	return runErr
}

func buildApp(cfg *config.Config, logr *zap.Logger) *matcherApp {
	engine, err := matching.NewCompatibilityEngine(matching.Weights{
		Personality:      cfg.Weights.Personality,
		StudyPreferences: cfg.Weights.StudyPreferences,
		AcademicGoals:    cfg.Weights.AcademicGoals,
		Availability:     cfg.Weights.Availability,
	})
	if err != nil {
		logr.Sugar().Fatalw("invalid engine configuration", "error", err)
	}

	solver := scheduling.NewSolver(scheduling.Constraints{
		MaxSessionsPerDay:     cfg.Scheduling.MaxSessionsPerDay,
		MaxSessionsPerWeek:    cfg.Scheduling.MaxSessionsPerWeek,
		MaxPartnersPerStudent: cfg.Scheduling.MaxPartnersPerStudent,
		SessionHours:          cfg.Scheduling.SessionHours,
	})

	metrics := service.NewMetricsService()

	var cacheRepo *repository.CacheRepository
	var cacheService *service.CacheService
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, matrix cache disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(client, logr)
			cacheService = service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, true)
		}
	}

	matcher := service.NewMatcherService(engine, solver, cacheService, metrics, nil, logr, service.MatcherDefaults{
		MinScore:    cfg.Matching.MinScore,
		MaxResults:  cfg.Matching.MaxResults,
		MaxSessions: cfg.Matching.MaxSessions,
		CacheTTL:    cfg.Cache.TTL,
	})

	return &matcherApp{matcher: matcher, metrics: metrics, cacheRepo: cacheRepo}
}

func serveMetrics(addr string, metrics *service.MetricsService, logr *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logr.Warn("metrics listener stopped", zap.String("addr", addr), zap.Error(err))
	}
}

func logSnapshot(logr *zap.Logger, snap service.MetricsSnapshot) {
	logr.Debug("run metrics",
		zap.Uint64("match_queries", snap.MatchQueries),
		zap.Uint64("matches_returned", snap.MatchesReturned),
		zap.Uint64("scores_computed", snap.ScoresComputed),
		zap.Uint64("sessions_scheduled", snap.SessionsScheduled),
		zap.Uint64("cache_hits", snap.CacheHits),
		zap.Uint64("cache_misses", snap.CacheMisses),
		zap.Float64("cache_hit_ratio", snap.CacheHitRatio),
	)
}

func loadProfiles(path string) ([]models.StudentProfile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles %s: %w", path, err)
	}
	var records []models.StoredProfile
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse profiles %s: %w", path, err)
	}
	return matching.NormalizeProfiles(records), nil
}

func exportSchedule(resp *dto.GroupScheduleResponse, format, outputDir string) (string, error) {
	var payload []byte
	var err error
	switch format {
	case "csv":
		payload, err = export.NewCSVExporter().Render(resp)
	case "pdf":
		payload, err = export.NewPDFExporter().Render(resp)
	default:
		return "", fmt.Errorf("unsupported export format %q (want csv or pdf)", format)
	}
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir %s: %w", outputDir, err)
	}
	path := filepath.Join(outputDir, fmt.Sprintf("schedule-%s.%s", resp.ScheduleID, format))
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write export %s: %w", path, err)
	}
	return path, nil
}

func writeJSON(w *os.File, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
