package cmd

import (
	"bytes"
	"os/exec"
	"strings"

	mdwerror "github.com/msto63/codasai/foundation/core/error"
)

// Committer identity for commits made by codasai save
const (
	committerName  = "codasai CLI"
	committerEmail = "codasai@localhost"
)

// gitAvailable reports whether a git binary is on PATH
func gitAvailable() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// runGit runs git with args in dir and returns its trimmed stdout
func runGit(dir string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	c := exec.Command("git", args...)
	c.Dir = dir
	c.Stdout = &stdout
	c.Stderr = &stderr

	if err := c.Run(); err != nil {
		return "", mdwerror.Wrap(err, "git "+args[0]+" failed").
			WithCode(mdwerror.CodeInternal).
			WithOperation("cmd.runGit").
			WithDetail("dir", dir).
			WithDetail("stderr", strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// commitPage stages pages/ and workspace/ and commits them for entry
func commitPage(project, name, code string) error {
	if _, err := runGit(project, "add", "--", "pages", "workspace"); err != nil {
		return err
	}
	_, err := runGit(project,
		"-c", "committer.name="+committerName,
		"-c", "committer.email="+committerEmail,
		"commit", "-m", "Add page: "+name+"\nCode: "+code,
	)
	return err
}
