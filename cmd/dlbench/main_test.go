package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"dlrho/internal/dlscan"
)

func TestSummarize(t *testing.T) {
	s := summarize([]time.Duration{3 * time.Millisecond, time.Millisecond, 2 * time.Millisecond})
	assert.Equal(t, time.Millisecond, s.min)
	assert.Equal(t, 2*time.Millisecond, s.avg)
	assert.Equal(t, 3*time.Millisecond, s.max)
	assert.Equal(t, stats{}, summarize(nil))
}

func TestScenarioArgs(t *testing.T) {
	sc := scenario{P: "107", A: "10", B: "64", Order: "53", Args: []string{"--branching", "hashed"}}
	args := sc.args(5)
	assert.Equal(t, "solve", args[0])
	assert.Contains(t, args, "--order")
	assert.Contains(t, args, "json")
	assert.Equal(t, []string{"--seed", "5", "--branching", "hashed"}, args[len(args)-4:])

	sc = scenario{P: "107", A: "10", B: "64"}
	assert.NotContains(t, sc.args(0), "--order")
	assert.NotContains(t, sc.args(0), "--seed")
}

func TestScenarioCheck(t *testing.T) {
	sc := scenario{Expected: "20"}
	assert.Equal(t, "ok", sc.check(runResult{art: dlscan.Artifact{X: "20", Outcome: "solved"}}))
	assert.Contains(t, sc.check(runResult{art: dlscan.Artifact{X: "21"}}), "MISMATCH")

	sc = scenario{}
	assert.Equal(t, "ok (unverified)", sc.check(runResult{exit: dlscan.ExitNotFound, art: dlscan.Artifact{Outcome: "unverified"}}))
	assert.Contains(t, sc.check(runResult{art: dlscan.Artifact{X: "3"}}), "MISMATCH")
}

func TestScenariosAreSolvable(t *testing.T) {
	for _, sc := range scenarios {
		cfg := dlscan.DefaultConfig()
		cfg.P, cfg.A, cfg.B, cfg.Order = sc.P, sc.A, sc.B, sc.Order
		assert.NoError(t, cfg.Validate(), sc.Name)
	}
}
