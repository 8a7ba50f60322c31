package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aphasia-lab/pausa/analysis"
	"github.com/aphasia-lab/pausa/logging"
)

// flushInterval is how many completed files trigger an intermediate CSV
// rewrite, so long corpus runs survive interruption with partial results.
const flushInterval = 100

// Options configures a corpus run.
type Options struct {
	Root      string // corpus root directory
	OutputCSV string // results file, rewritten as the run progresses; "" skips writing
	Workers   int    // concurrent analyses; values < 1 run single-threaded
	Subtype   string // restrict to one cohort label, "" for all
	MaxFiles  int    // cap on files processed, 0 for no cap
	CacheDir  string // on-disk result cache, "" disables caching
	Cache     *Cache // pre-opened cache overriding CacheDir; the caller keeps ownership
}

// FileResult is one recording's outcome: either a full report or a
// captured error. Failed files keep their identity columns so the CSV
// shows what was skipped and why.
type FileResult struct {
	ID          string          `json:"id" msgpack:"id"`
	Path        string          `json:"file_path" msgpack:"file_path"`
	Name        string          `json:"file_name" msgpack:"file_name"`
	SizeMB      float64         `json:"file_size_mb" msgpack:"file_size_mb"`
	Subtype     string          `json:"subtype" msgpack:"subtype"`
	Duration    float64         `json:"total_duration" msgpack:"total_duration"`
	NumSegments int             `json:"num_segments" msgpack:"num_segments"`
	Report      analysis.Report `json:"report" msgpack:"report"`
	Error       string          `json:"error,omitempty" msgpack:"error"`
	Cached      bool            `json:"-" msgpack:"-"`
}

// Failed reports whether the recording produced an error instead of a report.
func (fr *FileResult) Failed() bool {
	return fr.Error != ""
}

// SubtypeSummary aggregates one cohort's results. Means cover only
// successfully analyzed files.
type SubtypeSummary struct {
	Files                     int     `json:"files"`
	TotalDuration             float64 `json:"total_duration"`
	MeanPathologicalPauseRate float64 `json:"mean_pathological_pause_rate"`
	MeanSpeakingRate          float64 `json:"mean_speaking_rate"`
	MeanF0                    float64 `json:"mean_f0"`
}

// Summary describes a completed corpus run.
type Summary struct {
	RunID     string                    `json:"run_id"`
	Total     int                       `json:"total"`
	Processed int                       `json:"processed"`
	Failed    int                       `json:"failed"`
	CacheHits int                       `json:"cache_hits"`
	Elapsed   time.Duration             `json:"elapsed"`
	BySubtype map[string]SubtypeSummary `json:"by_subtype"`
}

// Runner drives the analysis pipeline over a corpus with a bounded worker
// pool. Results keep corpus scan order regardless of completion order.
type Runner struct {
	pipeline *analysis.Pipeline
	opts     Options
	logger   logging.Logger
}

// NewRunner creates a corpus runner around a configured pipeline.
func NewRunner(pipeline *analysis.Pipeline, opts Options) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Runner{
		pipeline: pipeline,
		opts:     opts,
		logger: logging.WithFields(logging.Fields{
			"component": "batch_runner",
		}),
	}
}

// Run scans the corpus, analyzes every matching recording and writes the
// results CSV. Per-file failures are captured in their rows without
// aborting the run; a canceled context stops feeding new files, finishes
// in-flight ones and still writes what completed.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	runID := uuid.New().String()
	logger := r.logger.WithFields(logging.Fields{
		"run_id": runID,
	})
	started := time.Now()

	files, err := r.collectFiles()
	if err != nil {
		return nil, err
	}

	logger.Info("Corpus scan complete", logging.Fields{
		"root":    r.opts.Root,
		"files":   len(files),
		"workers": r.opts.Workers,
	})

	cache, err := r.openCache()
	if err != nil {
		return nil, err
	}
	if cache != nil && r.opts.Cache == nil {
		defer cache.Close()
	}

	results := make([]*FileResult, len(files))

	jobs := make(chan int)
	var wg sync.WaitGroup
	var mu sync.Mutex
	completed := 0

	for w := 0; w < r.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				result := r.processFile(ctx, files[idx], cache, logger)

				mu.Lock()
				results[idx] = result
				completed++
				if r.opts.OutputCSV != "" && completed%flushInterval == 0 {
					if err := WriteResultsCSV(r.opts.OutputCSV, results); err != nil {
						logger.Warn("Intermediate CSV write failed", logging.Fields{
							"error": err.Error(),
						})
					} else {
						logger.Info("Saved intermediate results", logging.Fields{
							"completed": completed,
						})
					}
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for i := range files {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if r.opts.OutputCSV != "" {
		if err := WriteResultsCSV(r.opts.OutputCSV, results); err != nil {
			return nil, err
		}
	}

	summary := summarize(runID, results, time.Since(started))
	r.logSummary(logger, summary)

	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("batch interrupted: %w", err)
	}
	return summary, nil
}

// collectFiles scans the corpus and applies the subtype filter and file cap.
func (r *Runner) collectFiles() ([]string, error) {
	files, err := FindAudioFiles(r.opts.Root)
	if err != nil {
		return nil, err
	}

	if r.opts.Subtype != "" {
		want := strings.ToLower(r.opts.Subtype)
		filtered := files[:0]
		for _, f := range files {
			if SubtypeFromPath(f, r.opts.Root) == want {
				filtered = append(filtered, f)
			}
		}
		files = filtered
	}

	if r.opts.MaxFiles > 0 && len(files) > r.opts.MaxFiles {
		files = files[:r.opts.MaxFiles]
	}

	return files, nil
}

func (r *Runner) openCache() (*Cache, error) {
	if r.opts.Cache != nil {
		return r.opts.Cache, nil
	}
	if r.opts.CacheDir == "" {
		return nil, nil
	}
	return OpenCache(r.opts.CacheDir)
}

// processFile analyzes one recording, consulting and feeding the cache.
// Only successful analyses are cached; failures rerun on the next attempt.
func (r *Runner) processFile(ctx context.Context, path string, cache *Cache, logger logging.Logger) *FileResult {
	result := &FileResult{
		ID:      uuid.New().String(),
		Path:    path,
		Name:    filepath.Base(path),
		Subtype: SubtypeFromPath(path, r.opts.Root),
	}

	itemLogger := logger.WithFields(logging.Fields{
		"item_id": result.ID,
		"path":    path,
	})

	var cacheKey string
	if info, err := os.Stat(path); err == nil {
		result.SizeMB = float64(info.Size()) / (1024 * 1024)
		if cache != nil {
			if abs, absErr := filepath.Abs(path); absErr == nil {
				cacheKey = Key(abs, info)
			}
		}
	}

	if cache != nil && cacheKey != "" {
		cached, hit, err := cache.Get(cacheKey)
		if err != nil {
			itemLogger.Warn("Cache lookup failed", logging.Fields{
				"error": err.Error(),
			})
		} else if hit {
			cached.Cached = true
			itemLogger.Debug("Cache hit, skipping analysis")
			return cached
		}
	}

	analyzed, err := r.pipeline.Analyze(ctx, path)
	if err != nil {
		itemLogger.Error(err, "Analysis failed")
		result.Error = err.Error()
		return result
	}

	result.Duration = analyzed.Duration
	result.NumSegments = len(analyzed.Segments)
	result.Report = analyzed.Report

	if cache != nil && cacheKey != "" {
		if err := cache.Put(cacheKey, result); err != nil {
			itemLogger.Warn("Cache write failed", logging.Fields{
				"error": err.Error(),
			})
		}
	}

	return result
}

func summarize(runID string, results []*FileResult, elapsed time.Duration) *Summary {
	summary := &Summary{
		RunID:     runID,
		Elapsed:   elapsed,
		BySubtype: make(map[string]SubtypeSummary),
	}

	type accum struct {
		files    int
		ok       int
		duration float64
		pauseSum float64
		rateSum  float64
		f0Sum    float64
	}
	acc := make(map[string]*accum)

	for _, result := range results {
		if result == nil {
			continue
		}
		summary.Total++

		a := acc[result.Subtype]
		if a == nil {
			a = &accum{}
			acc[result.Subtype] = a
		}
		a.files++

		if result.Cached {
			summary.CacheHits++
		}
		if result.Failed() {
			summary.Failed++
			continue
		}

		summary.Processed++
		a.ok++
		a.duration += result.Duration
		a.pauseSum += result.Report["pathological_pause_rate"]
		a.rateSum += result.Report["speaking_rate"]
		a.f0Sum += result.Report["f0_mean"]
	}

	for subtype, a := range acc {
		s := SubtypeSummary{
			Files:         a.files,
			TotalDuration: a.duration,
		}
		if a.ok > 0 {
			s.MeanPathologicalPauseRate = a.pauseSum / float64(a.ok)
			s.MeanSpeakingRate = a.rateSum / float64(a.ok)
			s.MeanF0 = a.f0Sum / float64(a.ok)
		}
		summary.BySubtype[subtype] = s
	}

	return summary
}

func (r *Runner) logSummary(logger logging.Logger, summary *Summary) {
	logger.Info("Batch run complete", logging.Fields{
		"total":      summary.Total,
		"processed":  summary.Processed,
		"failed":     summary.Failed,
		"cache_hits": summary.CacheHits,
		"elapsed_s":  summary.Elapsed.Seconds(),
	})

	for _, subtype := range append(Subtypes(), SubtypeUnknown) {
		s, ok := summary.BySubtype[subtype]
		if !ok {
			continue
		}
		logger.Info("Cohort summary", logging.Fields{
			"subtype":                 subtype,
			"files":                   s.Files,
			"total_duration_s":        s.TotalDuration,
			"pathological_pause_rate": s.MeanPathologicalPauseRate,
			"speaking_rate":           s.MeanSpeakingRate,
			"f0_mean":                 s.MeanF0,
		})
	}
}
