//go:build e2e

package e2e

import (
	"bytes"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperengineering/lifter/internal/engine"
	"github.com/hyperengineering/lifter/internal/parser"
	"github.com/hyperengineering/lifter/internal/snapshot"
	"github.com/hyperengineering/lifter/internal/workout"
	"github.com/hyperengineering/lifter/pkg/client"
)

const e2eAPIKey = "e2e-test-api-key"

// lifterServer manages a running `lifter serve` process.
type lifterServer struct {
	cmd     *exec.Cmd
	env     []string
	address string
	logFile string
}

// baseEnv configures lifter entirely through environment variables over a
// sqlite database in dataDir.
func baseEnv(dataDir string) []string {
	return append(os.Environ(),
		"LIFTER_DB_PATH="+filepath.Join(dataDir, "lifter.db"),
		"LIFTER_STORAGE_BACKEND=sqlite",
		"LIFTER_API_KEY="+e2eAPIKey,
		"LIFTER_SNAPSHOT_DIR="+filepath.Join(dataDir, "snapshots"),
		"LIFTER_CONFIG_PATH="+filepath.Join(dataDir, "nonexistent.yaml"), // skip YAML file
		"LIFTER_DEV_MODE=true", // skip secret checks
		"OPENAI_API_KEY=",      // no parser; imports are disabled
	)
}

// startLifter launches the server and waits for it to become healthy.
func startLifter(t *testing.T, dataDir string, extraEnv ...string) *lifterServer {
	t.Helper()
	requireLifter(t)

	port := freePort(t)
	env := append(baseEnv(dataDir), fmt.Sprintf("LIFTER_PORT=%d", port))
	env = append(env, extraEnv...)

	logFile := filepath.Join(dataDir, fmt.Sprintf("lifter-%d.log", port))
	lf, err := os.Create(logFile)
	if err != nil {
		t.Fatalf("create log file: %v", err)
	}

	cmd := exec.Command(lifterBin, "serve")
	cmd.Env = env
	cmd.Stdout = lf
	cmd.Stderr = lf
	if err := cmd.Start(); err != nil {
		lf.Close()
		t.Fatalf("start lifter: %v", err)
	}

	s := &lifterServer{
		cmd:     cmd,
		env:     env,
		address: fmt.Sprintf("127.0.0.1:%d", port),
		logFile: logFile,
	}
	t.Cleanup(func() {
		s.stop()
		lf.Close()
	})

	if err := s.waitHealthy(10 * time.Second); err != nil {
		logs, _ := os.ReadFile(logFile)
		t.Fatalf("lifter not healthy: %v\n%s", err, logs)
	}
	return s
}

// stop interrupts the server and waits for the graceful shutdown to finish.
func (s *lifterServer) stop() {
	if s.cmd != nil && s.cmd.Process != nil && s.cmd.ProcessState == nil {
		_ = s.cmd.Process.Signal(os.Interrupt)
		_ = s.cmd.Wait()
	}
}

func (s *lifterServer) baseURL() string {
	return "http://" + s.address
}

func (s *lifterServer) client(t *testing.T) *client.Client {
	t.Helper()
	c, err := client.New(client.Config{BaseURL: s.baseURL(), APIKey: e2eAPIKey, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("client.New: %v", err)
	}
	return c
}

func (s *lifterServer) waitHealthy(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	url := s.baseURL() + "/api/v1/health"

	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("lifter not healthy after %s", timeout)
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("find free port: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

// runCLI runs a lifter subcommand against dataDir and returns its stdout.
func runCLI(t *testing.T, dataDir, stdin string, args ...string) (string, error) {
	t.Helper()
	requireLifter(t)

	cmd := exec.Command(lifterBin, args...)
	cmd.Env = baseEnv(dataDir)
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.String(), fmt.Errorf("lifter %s: %w\n%s", strings.Join(args, " "), err, stderr.String())
	}
	return stdout.String(), nil
}

// --- Seed data ---

type seedSource struct {
	plans    []workout.WorkoutPlan
	trackers []workout.Tracker
}

func (s seedSource) Plans() []workout.WorkoutPlan { return s.plans }
func (s seedSource) Trackers() []workout.Tracker { return s.trackers }

// writeSeedBackup writes a backup with one two-week plan and its first
// repetition. Imports need a parser, so data reaches the server this way.
func writeSeedBackup(t *testing.T, dir string) string {
	t.Helper()
	now := time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)

	plan := parser.BuildPlan(parser.ParsedPlan{
		Name:          "Five by Five",
		DurationWeeks: 2,
		Days: []parser.ParsedDay{
			{DayName: "Monday", Focus: "A", Exercises: []parser.ParsedExercise{
				{Name: "Squat", Sets: 5, Reps: "5"},
				{Name: "Bench", Sets: 5, Reps: "5"},
			}},
			{DayName: "Wednesday", Focus: "B", Exercises: []parser.ParsedExercise{
				{Name: "Deadlift", Sets: 1, Reps: "5"},
			}},
		},
	}, now)

	rep := engine.NewRepetition(plan, now, workout.NewID)
	tracker := engine.AppendRepetition(workout.Tracker{ID: workout.NewID(), PlanID: plan.ID}, rep)

	path, err := snapshot.Export(seedSource{
		plans:    []workout.WorkoutPlan{plan},
		trackers: []workout.Tracker{tracker},
	}, dir, now)
	if err != nil {
		t.Fatalf("write seed backup: %v", err)
	}
	return path
}
