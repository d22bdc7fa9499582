package main

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultGreeting = "¡Hola! 👋 Te doy la bienvenida al perfil interactivo de Juanes. " +
	"Soy MatIA, tu asistente virtual encargado de proporcionarte detalles sobre su trayectoria " +
	"en desarrollo, proyectos de IA 🧠 y arquitectura de software. ¿Te gustaría conocer su " +
	"experiencia laboral 💼, estudios 🎓 o habilidades técnicas? 🚀"

const defaultErrorText = "Error al conectar con el servidor."

const defaultAPIBaseURL = "http://127.0.0.1:8000"

type config struct {
	Port string `yaml:"port"`

	// APIBaseURL is the base address of the remote chat backend. The MATIA_API_URL
	// environment variable takes precedence over the file value.
	APIBaseURL string `yaml:"apiBaseUrl"`

	// Greeting seeds the conversation as the first assistant message.
	Greeting string `yaml:"greeting"`

	// ErrorText is the assistant turn shown when the chat request fails.
	ErrorText string `yaml:"errorText"`

	LogLevel string `yaml:"logLevel"`
}

// loadConfig reads the yaml config file at path, falling back to defaults when the file does not
// exist. Every field has a usable default, so a missing file is not an error.
func loadConfig(path string) (config, error) {
	cfg := config{
		Port:      "8080",
		Greeting:  defaultGreeting,
		ErrorText: defaultErrorText,
		LogLevel:  "info",
	}

	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return config{}, fmt.Errorf("error opening config file: %w", err)
		}
	} else {
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return config{}, fmt.Errorf("error decoding config file: %w", err)
		}
	}

	if url := os.Getenv("MATIA_API_URL"); url != "" {
		cfg.APIBaseURL = url
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}

	return cfg, nil
}

func (c config) slogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
