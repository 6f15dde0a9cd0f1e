// Command tune searches liquid cohesion parameters with CMA-ES, scoring each
// candidate by how compact a settled circular fill stays.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/ShamylZakariya/Surfacer-sub000/config"
)

// evalRow is one line of tune_log.csv.
type evalRow struct {
	Eval           int     `csv:"eval"`
	Fitness        float64 `csv:"fitness"`
	Spread         float64 `csv:"spread"`
	Retained       float64 `csv:"retained"`
	ClumpingForce  float64 `csv:"clumping_force"`
	LinearDamping  float64 `csv:"linear_damping"`
	AngularDamping float64 `csv:"angular_damping"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	liquidName := flag.String("liquid", "", "Liquid to tune (empty = use config)")
	maxEvals := flag.Int("max-evals", 0, "Maximum number of evaluations (0 = use config)")
	population := flag.Int("population", 0, "CMA-ES population size (0 = use config)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()
	tc := baseCfg.Tuning
	if *liquidName != "" {
		tc.Liquid = *liquidName
	}
	if *maxEvals > 0 {
		tc.MaxEvals = *maxEvals
	}
	if *population > 0 {
		tc.Population = *population
	}

	params, err := NewParamVector(baseCfg, tc.Liquid)
	if err != nil {
		log.Fatal(err)
	}
	evaluator := NewFitnessEvaluator(params, *configPath)

	logPath := filepath.Join(*outputDir, "tune_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			clamped := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(clamped)
			spread, retained := evaluator.LastResult()
			evalCount++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = clamped
			}

			row := []evalRow{{
				Eval:           evalCount,
				Fitness:        fitness,
				Spread:         spread,
				Retained:       retained,
				ClumpingForce:  clamped[0],
				LinearDamping:  clamped[1],
				AngularDamping: clamped[2],
			}}
			var werr error
			if evalCount == 1 {
				werr = gocsv.Marshal(row, logFile)
			} else {
				werr = gocsv.MarshalWithoutHeaders(row, logFile)
			}
			if werr != nil {
				log.Printf("failed to write log row: %v", werr)
			}

			elapsed := time.Since(startTime)
			avgPerEval := elapsed / time.Duration(evalCount)
			remaining := time.Duration(tc.MaxEvals-evalCount) * avgPerEval
			fmt.Printf("Eval %d/%d: spread=%.3f retained=%.2f (best=%.3f) | elapsed: %s, ETA: %s\n",
				evalCount, tc.MaxEvals, spread, retained, bestFitness,
				formatDuration(elapsed), formatDuration(remaining))

			return fitness
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: tc.MaxEvals,
		Concurrent:      0,
	}
	method := &optimize.CmaEsChol{
		InitStepSize: tc.InitStepSize,
		Population:   tc.Population,
	}

	fmt.Printf("Tuning %s: %d parameters, population=%d, max_evals=%d, engine=%s\n",
		tc.Liquid, params.Dim(), tc.Population, tc.MaxEvals, baseCfg.Physics.Engine)

	initX := params.Normalize(params.DefaultVector())
	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		log.Fatal("no evaluations completed")
	}

	fmt.Printf("\nTuning complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best fitness: %.4f\n", bestFitness)
	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Path, bestParams[i])
	}

	bestCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to reload config: %v", err)
	}
	params.ApplyToConfig(bestCfg, bestParams)

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}
