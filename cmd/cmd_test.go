package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/frahmantamala/expense-tracker-client/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// fakeAPI serves just enough of the expense API for the commands.
type fakeAPI struct {
	mu       sync.Mutex
	expenses []map[string]any
	created  map[string]any
	revoked  bool
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	f.mu.Lock()
	revoked := f.revoked
	f.mu.Unlock()
	authed := !revoked && r.Header.Get("Authorization") == "Bearer tok-cli"

	switch {
	case r.URL.Path == "/api/auth/token":
		_ = r.ParseForm()
		if r.PostForm.Get("password") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Incorrect username or password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-cli","token_type":"bearer"}`))

	case r.URL.Path == "/api/users/me" && authed:
		_, _ = w.Write([]byte(`{"id":7,"username":"alice","email":"alice@example.com","is_active":true}`))

	case r.URL.Path == "/api/expenses/categories/":
		_, _ = w.Write([]byte(`[{"id":1,"name":"Food","description":null},{"id":2,"name":"Rent","description":null}]`))

	case r.URL.Path == "/api/expenses/" && authed && r.Method == http.MethodPost:
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.created = body
		record := map[string]any{
			"id":          len(f.expenses) + 1,
			"user_id":     7,
			"description": body["description"],
			"amount":      body["amount"],
			"category_id": body["category_id"],
			"date":        time.Now().Format("2006-01-02T15:04:05.000000"),
			"category":    map[string]any{"id": body["category_id"], "name": "Food"},
		}
		f.expenses = append(f.expenses, record)
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(record)

	case r.URL.Path == "/api/expenses/" && authed:
		f.mu.Lock()
		page := f.expenses
		if r.URL.Query().Get("skip") != "0" {
			page = nil
		}
		_ = json.NewEncoder(w).Encode(append([]map[string]any{}, page...))
		f.mu.Unlock()

	case r.URL.Path == "/api/salaries/" && authed:
		_, _ = w.Write([]byte(`[]`))

	default:
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Not authenticated"}`))
	}
}

var _ = Describe("CLI", func() {
	var (
		api    *fakeAPI
		server *httptest.Server
		dir    string
	)

	setEnv := func(key, value string) {
		prev, had := os.LookupEnv(key)
		Expect(os.Setenv(key, value)).To(Succeed())
		DeferCleanup(func() {
			if had {
				_ = os.Setenv(key, prev)
			} else {
				_ = os.Unsetenv(key)
			}
		})
	}

	run := func(stdin string, args ...string) (string, error) {
		outputJSON, monthFlag, verbose = false, "", false
		loginUsername, passwordStdin = "", false
		expenseAllMonths, salaryAllMonths = false, false
		profile, apiURL = "", ""

		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(io.Discard)
		rootCmd.SetIn(strings.NewReader(stdin))
		rootCmd.SetArgs(append([]string{"--config", dir, "--api-url", server.URL}, args...))
		err := rootCmd.ExecuteContext(context.Background())
		return out.String(), err
	}

	BeforeEach(func() {
		api = &fakeAPI{}
		server = httptest.NewServer(api)
		DeferCleanup(server.Close)

		dir = GinkgoT().TempDir()
		setEnv("XDG_CONFIG_HOME", dir)
		setEnv("ENV_SESSION_DSN", filepath.Join(dir, "session.db"))
		setEnv("ENV_OBSERVABILITY_LOGGING_LEVEL", "error")
	})

	It("should keep the session between invocations until logout", func() {
		// Given
		out, err := run("secret\n", "login", "-u", "alice")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Logged in as alice"))

		// When
		out, err = run("", "status")

		// Then
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("alice <alice@example.com> (id 7)"))

		_, err = run("", "logout")
		Expect(err).NotTo(HaveOccurred())
		out, err = run("", "status")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Not logged in"))
	})

	It("should report a failed login", func() {
		_, err := run("wrong\n", "login", "-u", "alice")

		Expect(errors.Is(err, internal.ErrLoginFailed)).To(BeTrue())
	})

	It("should refuse data commands without a session", func() {
		_, err := run("", "expense", "list")

		Expect(errors.Is(err, internal.ErrUnauthenticated)).To(BeTrue())
		Expect(describeError(err)).To(ContainSubstring("Not logged in"))
	})

	It("should record an expense by category name and include it in the report", func() {
		// Given
		_, err := run("secret\n", "login", "-u", "alice")
		Expect(err).NotTo(HaveOccurred())

		// When
		out, err := run("", "expense", "add", "--amount", "12.50", "--category", "food", "--description", "Lunch")

		// Then
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Expense 1 recorded: 12.50 in Food"))
		Expect(api.created).To(HaveKeyWithValue("category_id", BeNumerically("==", 1)))
		Expect(api.created).To(HaveKeyWithValue("amount", BeNumerically("==", 12.5)))

		out, err = run("", "report", "--json")
		Expect(err).NotTo(HaveOccurred())
		var snapshot struct {
			Summary struct {
				ExpenseTotal json.Number `json:"expense_total"`
				ExpenseCount int         `json:"expense_count"`
			} `json:"summary"`
		}
		Expect(json.Unmarshal([]byte(out), &snapshot)).To(Succeed())
		Expect(snapshot.Summary.ExpenseCount).To(Equal(1))
		Expect(snapshot.Summary.ExpenseTotal.String()).To(Equal("12.5"))
	})

	It("should end the report with SessionExpired when the API revokes the token", func() {
		// Given
		_, err := run("secret\n", "login", "-u", "alice")
		Expect(err).NotTo(HaveOccurred())
		api.mu.Lock()
		api.revoked = true
		api.mu.Unlock()

		// When
		out, err := run("", "report")

		// Then
		Expect(errors.Is(err, internal.ErrSessionExpired)).To(BeTrue())
		Expect(out).NotTo(ContainSubstring("Net balance"))

		out, err = run("", "status")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Not logged in"))
	})

	It("should reject an unknown category before calling the API", func() {
		_, err := run("secret\n", "login", "-u", "alice")
		Expect(err).NotTo(HaveOccurred())

		_, err = run("", "expense", "add", "--amount", "3", "--category", "Travel")

		Expect(errors.Is(err, internal.ErrInvalidInput)).To(BeTrue())
		Expect(api.created).To(BeNil())
	})

	It("should list the contract operations", func() {
		out, err := run("", "contract", "check")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("POST /api/auth/token"))
	})
})

var _ = Describe("loadConfig", func() {
	BeforeEach(func() {
		profile, apiURL, verbose = "", "", false
		dir := GinkgoT().TempDir()
		Expect(os.Setenv("XDG_CONFIG_HOME", dir)).To(Succeed())
		DeferCleanup(os.Unsetenv, "XDG_CONFIG_HOME")
	})

	It("should read config.yml and let ENV_ variables override it", func() {
		// Given
		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(
			"api:\n  base_url: https://expenses.example.com\n  timeout: 3s\nsession:\n  profile: work\n"), 0o600)).To(Succeed())
		Expect(os.Setenv("ENV_SESSION_PROFILE", "home")).To(Succeed())
		DeferCleanup(os.Unsetenv, "ENV_SESSION_PROFILE")

		// When
		cfg, err := loadConfig(dir)

		// Then
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.API.BaseURL).To(Equal("https://expenses.example.com"))
		Expect(cfg.API.Timeout).To(Equal(3 * time.Second))
		Expect(cfg.Session.Profile).To(Equal("home"))
		Expect(cfg.Session.Driver).To(Equal("sqlite"))
	})

	It("should fall back to defaults without a config file", func() {
		cfg, err := loadConfig(GinkgoT().TempDir())

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.API.BaseURL).To(Equal(internal.DefaultConfig().API.BaseURL))
	})

	It("should reject an invalid configuration", func() {
		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(
			"api:\n  base_url: ftp://nope\nsession:\n  driver: mysql\n"), 0o600)).To(Succeed())

		_, err := loadConfig(dir)

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("api config"))
		Expect(err.Error()).To(ContainSubstring("session config"))
	})

	It("should read plain environment variables in container mode", func() {
		Expect(os.Setenv("DOCKER_ENV", "true")).To(Succeed())
		Expect(os.Setenv("API_BASE_URL", "http://api:8000")).To(Succeed())
		DeferCleanup(os.Unsetenv, "DOCKER_ENV")
		DeferCleanup(os.Unsetenv, "API_BASE_URL")

		cfg, err := loadConfig(GinkgoT().TempDir())

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.API.BaseURL).To(Equal("http://api:8000"))
	})
})
