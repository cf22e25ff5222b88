package project

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Resolver finds the dotenv file for a project, seeding the user copy from
// the template when neither exists yet.
type Resolver struct {
	ProjectRoot   string
	Filename      string
	Template      string
	UserConfigDir string
	Logger        *zap.Logger
}

// Resolve is a convenience wrapper around Resolver without logging.
func Resolve(projectRoot, filename, templateName, userConfigDir string) (string, error) {
	r := Resolver{
		ProjectRoot:   projectRoot,
		Filename:      filename,
		Template:      templateName,
		UserConfigDir: userConfigDir,
	}
	return r.Resolve()
}

// Resolve returns the path of the dotenv file. An existing target is never
// overwritten.
func (r Resolver) Resolve() (string, error) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	local := filepath.Join(r.ProjectRoot, r.Filename)
	if isFile(local) {
		logger.Debug("using project env file", zap.String("path", local))
		return local, nil
	}

	if err := os.MkdirAll(r.UserConfigDir, 0o755); err != nil {
		return "", fmt.Errorf("create user config dir: %w", err)
	}

	target := filepath.Join(r.UserConfigDir, r.Filename)
	if isFile(target) {
		logger.Debug("using user env file", zap.String("path", target))
		return target, nil
	}

	template := filepath.Join(r.ProjectRoot, r.Template)
	if !isFile(template) {
		logger.Warn("env template not found", zap.String("template", template))
		return "", fmt.Errorf("%w: %s", ErrTemplateMissing, template)
	}

	if err := copyFile(template, target); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return target, nil
		}
		return "", fmt.Errorf("seed env file: %w", err)
	}

	logger.Info("created env file from template",
		zap.String("template", template),
		zap.String("path", target),
	)
	return target, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
