package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks cross-field rules and the stricter production rules.
func ValidateConfig(cfg *Config) error {
	var problems []ValidationError

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" {
			problems = append(problems, ValidationError{"db_host", "is required for postgres"})
		}
		if cfg.DBName == "" {
			problems = append(problems, ValidationError{"db_name", "is required for postgres"})
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			problems = append(problems, ValidationError{"sqlite_path", "is required for sqlite"})
		}
	default:
		problems = append(problems, ValidationError{"db_driver", fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	switch cfg.ImageBackend {
	case "local":
		if cfg.MediaRoot == "" {
			problems = append(problems, ValidationError{"media_root", "is required for the local image backend"})
		}
	case "s3":
		if cfg.S3BucketName == "" {
			problems = append(problems, ValidationError{"s3_bucket_name", "is required for the s3 image backend"})
		}
	default:
		problems = append(problems, ValidationError{"image_backend", fmt.Sprintf("unsupported backend %q", cfg.ImageBackend)})
	}

	if cfg.JWTSecret == "" {
		problems = append(problems, ValidationError{"jwt_secret", "is required"})
	}
	if cfg.JWTTTL <= 0 {
		problems = append(problems, ValidationError{"jwt_ttl", "must be positive"})
	}
	if cfg.PageSize < 1 {
		problems = append(problems, ValidationError{"page_size", "must be at least 1"})
	}
	if cfg.RecipeCreateLimit < 0 {
		problems = append(problems, ValidationError{"recipe_create_limit", "must not be negative"})
	}

	if cfg.Environment == Production {
		if cfg.JWTSecret == defaultJWTSecret {
			problems = append(problems, ValidationError{"jwt_secret", "default secret is not allowed in production"})
		}
		if cfg.DBDriver == "postgres" && cfg.DBPassword == "" {
			problems = append(problems, ValidationError{"db_password", "secret is required in production"})
		}
	}

	if len(problems) == 0 {
		return nil
	}
	lines := make([]string, len(problems))
	for i, p := range problems {
		lines[i] = p.Error()
	}
	return fmt.Errorf("configuration validation failed:\n%s", strings.Join(lines, "\n"))
}
