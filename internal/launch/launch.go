// Package launch expands IDE argument templates and spawns the editor
// process for a project.
package launch

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/shlex"
	"go.uber.org/zap"

	"github.com/devboom/devboom/internal/model"
)

// Launcher starts IDE processes. Spawned processes are detached from
// the launcher's lifetime; we only report whether the start succeeded.
type Launcher struct {
	logger *zap.Logger
}

func NewLauncher(logger *zap.Logger) *Launcher {
	return &Launcher{logger: logger}
}

// ExpandArgs splits the template with shell-style quoting, then
// substitutes placeholders inside each token. Splitting first means a
// project path containing spaces stays a single argument.
func ExpandArgs(template, projectPath string) ([]string, error) {
	if strings.TrimSpace(template) == "" {
		return []string{projectPath}, nil
	}
	tokens, err := shlex.Split(template)
	if err != nil {
		return nil, fmt.Errorf("invalid args template %q: %w", template, err)
	}
	name := filepath.Base(projectPath)
	for i, tok := range tokens {
		tok = strings.ReplaceAll(tok, "{projectPath}", projectPath)
		tok = strings.ReplaceAll(tok, "{projectName}", name)
		tokens[i] = tok
	}
	return tokens, nil
}

// Open launches the configured IDE against a project directory.
func (l *Launcher) Open(ide model.IDEConfig, projectPath string) error {
	args, err := ExpandArgs(ide.ArgsTemplate, projectPath)
	if err != nil {
		return err
	}

	cmd := l.command(ide, projectPath, args)
	l.logger.Info("launching ide",
		zap.String("ide", ide.ID),
		zap.String("executable", cmd.Path),
		zap.Strings("args", cmd.Args[1:]),
		zap.String("project", projectPath))

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch %s: %w", ide.Name, err)
	}
	// Reap the child in the background so it never turns into a zombie.
	go func() { _ = cmd.Wait() }()
	return nil
}

// command builds the exec.Cmd for an IDE. Terminal-category tools on
// Windows are wrapped in Windows Terminal so they get a real console;
// everywhere else the executable runs directly with the project as its
// working directory.
func (l *Launcher) command(ide model.IDEConfig, projectPath string, args []string) *exec.Cmd {
	if runtime.GOOS == "windows" && (ide.Category == model.CategoryCLI || ide.Category == model.CategoryTerminal) {
		if wt, err := exec.LookPath("wt"); err == nil {
			wtArgs := append([]string{"-d", projectPath, ide.Executable}, args...)
			cmd := exec.Command(wt, wtArgs...)
			return cmd
		}
		l.logger.Debug("windows terminal not found, launching directly",
			zap.String("ide", ide.ID))
	}

	cmd := exec.Command(ide.Executable, args...)
	cmd.Dir = projectPath
	return cmd
}
