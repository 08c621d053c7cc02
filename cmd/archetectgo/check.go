package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run environment sanity checks",
	Long: `Check runs a handful of best-effort diagnostics — cache directory
writability and git author identity — and reports
them. It never participates in a render and a failing check does not block
one; it only affects this command's own exit code.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

type checkResult struct {
	name string
	ok   bool
	note string
}

func runCheck(cmd *cobra.Command, args []string) error {
	c, err := buildCoordinator()
	if err != nil {
		return err
	}

	results := []checkResult{
		checkCacheWritable(c.Layout.CacheDir),
		checkGitIdentity(),
	}

	failed := false
	for _, r := range results {
		mark := "ok"
		if !r.ok {
			mark = "FAIL"
			failed = true
		}
		if r.note != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s — %s\n", mark, r.name, r.note)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", mark, r.name)
		}
	}

	if failed {
		return fmt.Errorf("one or more checks failed")
	}
	return nil
}

func checkCacheWritable(cacheDir string) checkResult {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return checkResult{name: "cache directory writable", ok: false, note: err.Error()}
	}
	probe := filepath.Join(cacheDir, ".archetectgo-write-check")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return checkResult{name: "cache directory writable", ok: false, note: err.Error()}
	}
	_ = os.Remove(probe)
	return checkResult{name: "cache directory writable", ok: true}
}

func checkGitIdentity() checkResult {
	name, err := exec.Command("git", "config", "--get", "user.name").Output()
	if err != nil || len(name) == 0 {
		return checkResult{name: "git author identity configured", ok: false, note: "git config user.name is not set"}
	}
	email, err := exec.Command("git", "config", "--get", "user.email").Output()
	if err != nil || len(email) == 0 {
		return checkResult{name: "git author identity configured", ok: false, note: "git config user.email is not set"}
	}
	return checkResult{name: "git author identity configured", ok: true}
}
