package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/warden/pkg/domain/interfaces"
	"github.com/secmon-lab/warden/pkg/repository/filestore"
	"github.com/secmon-lab/warden/pkg/repository/memory"
	"github.com/secmon-lab/warden/pkg/utils/logging"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend string
	dataDir string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (file or memory)",
			Value:       "file",
			Sources:     cli.EnvVars("WARDEN_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "Directory for the flat-file record sets (required when using file backend)",
			Value:       "./data",
			Sources:     cli.EnvVars("WARDEN_DATA_DIR"),
			Destination: &r.dataDir,
		},
	}
}

// DataDir returns the configured data directory
func (r *Repository) DataDir() string {
	return r.dataDir
}

// Configure initializes and returns a repository based on the configured
// backend. The caller is responsible for calling Close() on the returned
// repository.
func (r *Repository) Configure() (interfaces.Repository, error) {
	switch r.backend {
	case "file":
		if r.dataDir == "" {
			return nil, goerr.New("data-dir is required when using file backend")
		}
		repo, err := filestore.New(r.dataDir)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize file repository")
		}
		logging.Default().Info("Using flat-file repository", "data_dir", r.dataDir)
		return repo, nil

	case "memory":
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.New("invalid repository backend", goerr.V("backend", r.backend))
	}
}
