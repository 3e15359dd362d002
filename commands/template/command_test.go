package template

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shortcut-cli/sc/cache"
	"github.com/shortcut-cli/sc/config"
	"github.com/shortcut-cli/sc/operations"
	"github.com/shortcut-cli/sc/pkg/logger"
)

const aliceID = "5f9c1c1e-1a2b-4c3d-8e9f-0a1b2c3d4e5f"

const sprintTemplate = `
version: 1
vars:
  sprint: Sprint 24
operations:
  - action: create
    entity: epic
    alias: epic
    fields:
      name: $var(sprint)
  - action: create
    entity: story
    fields:
      name: Login
      epic_id: $ref(epic.id)
      owners: [alice]
`

const failingTemplate = `
version: 1
on_error: continue
operations:
  - action: create
    entity: story
    fields:
      name: Broken
  - action: create
    entity: story
    fields:
      name: Fine
`

// fakeShortcut serves /members, /epics and /stories. Stories named "Broken" are rejected with 422.
type fakeShortcut struct {
	*httptest.Server

	mu     sync.Mutex
	hits   map[string]int
	bodies map[string][]map[string]any
}

func newFakeShortcut(t *testing.T) *fakeShortcut {
	t.Helper()

	f := &fakeShortcut{hits: map[string]int{}, bodies: map[string][]map[string]any{}}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		f.mu.Lock()
		f.hits[key]++
		f.bodies[key] = append(f.bodies[key], body)
		f.mu.Unlock()

		switch key {
		case "GET /members":
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{"id": aliceID, "profile": map[string]any{"mention_name": "alice"}},
			})
		case "POST /epics":
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]any{"id": 7, "name": body["name"]})
		case "POST /stories":
			if body["name"] == "Broken" {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = w.Write([]byte(`{"message":"invalid story"}`))

				return
			}
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]any{"id": 12, "name": body["name"]})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(f.Close)

	return f
}

func (f *fakeShortcut) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.hits[key]
}

func (f *fakeShortcut) body(key string, i int) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.bodies[key][i]
}

// testEnv wires a template command to a fake API and a cache directory under t.TempDir.
type testEnv struct {
	api      *fakeShortcut
	cacheDir string
	token    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	return &testEnv{api: newFakeShortcut(t), cacheDir: t.TempDir(), token: "token"}
}

func (e *testEnv) deps() Deps {
	return Deps{
		ConfigLoader: func(string) (*config.Config, error) {
			return &config.Config{
				APIToken:      e.token,
				APIURL:        e.api.URL,
				CacheDir:      e.cacheDir,
				RetryAttempts: 1,
				RetryDelay:    time.Millisecond,
			}, nil
		},
	}
}

func newTestCommand(t *testing.T, deps Deps) *cobra.Command {
	t.Helper()

	cmd, err := NewCommand(Config{Logger: logger.Test(t), Deps: deps})
	require.NoError(t, err)

	return cmd
}

func writeTemplate(t *testing.T, doc string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sprint.yml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	return path
}

// execute runs cmd with args and returns its stdout and stderr.
func execute(cmd *cobra.Command, stdin string, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()

	return stdout.String(), stderr.String(), err
}

func TestNewCommand_Structure(t *testing.T) {
	t.Parallel()

	cmd := newTestCommand(t, Deps{})

	assert.Equal(t, "template", cmd.Use)
	assert.Equal(t, templateShort, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	uses := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		uses = append(uses, sub.Name())
	}
	assert.ElementsMatch(t, []string{"run", "validate"}, uses)
}

func TestNewCommand_RunFlags(t *testing.T) {
	t.Parallel()

	cmd := newTestCommand(t, Deps{})
	run, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)

	yes := run.Flags().Lookup("yes")
	require.NotNil(t, yes)
	assert.Equal(t, "y", yes.Shorthand)
	assert.NotNil(t, run.Flags().Lookup("dry-run"))
	assert.NotNil(t, run.Flags().Lookup("json"))
	assert.NotNil(t, run.Flags().Lookup("var"))
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	_, err := NewCommand(Config{})
	require.EqualError(t, err, "template.Config: missing required fields: Logger")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := execute(newTestCommand(t, Deps{}), "", "validate", writeTemplate(t, sprintTemplate))
		require.NoError(t, err)
		assert.Equal(t, "✅ Template is valid: 2 operation(s), 2 request(s)\n", stdout)
	})

	t.Run("stdin", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := execute(newTestCommand(t, Deps{}), sprintTemplate, "validate", "-")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Template is valid")
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		path := writeTemplate(t, `
version: 1
operations:
  - action: update
    entity: story
    fields:
      name: x
  - action: create
    entity: story
    fields:
      epic_id: $ref(missing.id)
`)
		_, stderr, err := execute(newTestCommand(t, Deps{}), "", "validate", path)
		require.ErrorIs(t, err, errInvalidTemplate)
		assert.Contains(t, stderr, "operations[0]")
		assert.Contains(t, stderr, "operations[1]")
	})

	t.Run("parse error", func(t *testing.T) {
		t.Parallel()

		_, _, err := execute(newTestCommand(t, Deps{}), "", "validate", filepath.Join(t.TempDir(), "missing.yml"))
		require.ErrorContains(t, err, "failed to open template")
	})
}

func TestRun(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	stdout, _, err := execute(newTestCommand(t, env.deps()), "", "run", writeTemplate(t, sprintTemplate), "--yes")
	require.NoError(t, err)

	assert.Equal(t, strings.Join([]string{
		"[1/2] Created epic 7 - Sprint 24",
		"[2/2] Created story 12 - Login",
		"Summary: total=2 succeeded=2 failed=0",
		"",
	}, "\n"), stdout)

	assert.Equal(t, 1, env.api.count("GET /members"))
	story := env.api.body("POST /stories", 0)
	assert.Equal(t, []any{aliceID}, story["owner_ids"])
	assert.InDelta(t, 7, story["epic_id"], 0)
	assert.NotContains(t, story, "owners")

	id, err := cache.NewFileStore(env.cacheDir).Get(cache.KindMember, "alice")
	require.NoError(t, err)
	assert.Equal(t, aliceID, id)
}

func TestRun_VarOverride(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	path := writeTemplate(t, sprintTemplate)

	stdout, _, err := execute(newTestCommand(t, env.deps()), "", "run", path, "--yes", "--var", "sprint=Sprint 25")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[1/2] Created epic 7 - Sprint 25")

	_, _, err = execute(newTestCommand(t, env.deps()), "", "run", path, "--yes", "--var", "team=core")
	require.Error(t, err)
	assert.Equal(t, 1, env.api.count("POST /epics"), "nothing is sent after a rejected override")

	_, _, err = execute(newTestCommand(t, env.deps()), "", "run", path, "--yes", "--var", "sprint")
	require.EqualError(t, err, `invalid --var "sprint": expected key=value`)

	_, stderr, err := execute(newTestCommand(t, env.deps()), "", "run", path, "--yes", "--var", "sprint=$ref(epic.name)")
	require.ErrorIs(t, err, errInvalidTemplate)
	assert.Contains(t, stderr, `$var(sprint): $ref(epic.name): alias "epic" is not defined by an earlier operation`)
	assert.Equal(t, 1, env.api.count("POST /epics"))
}

func TestRun_FailedOperationFailsCommand(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	stdout, _, err := execute(newTestCommand(t, env.deps()), "", "run", writeTemplate(t, failingTemplate), "--yes")
	require.EqualError(t, err, "1 of 2 operation(s) failed")

	assert.Equal(t, 2, env.api.count("POST /stories"))
	assert.Contains(t, stdout, "[1/2] FAILED: create story — POST /stories: API returned status 422")
	assert.Contains(t, stdout, "[2/2] Created story 12 - Fine")
	assert.Contains(t, stdout, "Summary: total=2 succeeded=1 failed=1")
}

func TestRun_DryRun(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.token = ""

	stdout, _, err := execute(newTestCommand(t, env.deps()), "", "run", writeTemplate(t, sprintTemplate), "--dry-run")
	require.NoError(t, err)

	assert.Zero(t, env.api.count("POST /epics"))
	assert.Zero(t, env.api.count("GET /members"))
	assert.Contains(t, stdout, "POST /epics\n")
	assert.Contains(t, stdout, "POST /stories\n")
	assert.Contains(t, stdout, `"epic_id": 1000`)
	assert.Contains(t, stdout, `"alice"`, "offline lookups leave unknown names as written")
	assert.Contains(t, stdout, "Summary: total=2 succeeded=2 failed=0")
}

func TestRun_MissingToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.token = ""

	_, _, err := execute(newTestCommand(t, env.deps()), "", "run", writeTemplate(t, sprintTemplate), "--yes")
	require.ErrorIs(t, err, config.ErrMissingToken)
}

func TestRun_Confirmation(t *testing.T) {
	t.Parallel()

	t.Run("declined", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		stdout, _, err := execute(newTestCommand(t, env.deps()), "n\n", "run", writeTemplate(t, sprintTemplate))
		require.ErrorIs(t, err, operations.ErrAborted)
		assert.Contains(t, stdout, "This will execute 2 operation(s):")
		assert.Zero(t, env.api.count("POST /epics"))
	})

	t.Run("accepted", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		stdout, _, err := execute(newTestCommand(t, env.deps()), "y\n", "run", writeTemplate(t, sprintTemplate))
		require.NoError(t, err)
		assert.Contains(t, stdout, "Proceed? [y/N]: ")
		assert.Equal(t, 1, env.api.count("POST /epics"))
	})

	t.Run("stdin template needs --yes", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		_, _, err := execute(newTestCommand(t, env.deps()), sprintTemplate, "run", "-")
		require.ErrorIs(t, err, errStdinNeedsConfirmation)
		assert.Zero(t, env.api.count("POST /epics"))
	})
}

func TestRun_JSON(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	stdout, _, err := execute(newTestCommand(t, env.deps()), sprintTemplate, "run", "-", "--yes", "--json")
	require.NoError(t, err)

	var got struct {
		RunID   string `json:"run_id"`
		DryRun  bool   `json:"dry_run"`
		Results []struct {
			Index  int    `json:"index"`
			Alias  string `json:"alias"`
			Status string `json:"status"`
		} `json:"results"`
		Summary operations.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got), stdout)

	assert.NotEmpty(t, got.RunID)
	assert.False(t, got.DryRun)
	require.Len(t, got.Results, 2)
	assert.Equal(t, "epic", got.Results[0].Alias)
	assert.Equal(t, "success", got.Results[1].Status)
	assert.Equal(t, operations.Summary{Total: 2, Succeeded: 2, Failed: 0}, got.Summary)
}
