package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FlowVariant identifica la secuencia de pasos del wizard.
type FlowVariant string

const (
	// FlowFull: guidelines → gallery → styleSelection → uploading → generating → result.
	FlowFull FlowVariant = "full"
	// FlowPhotoFirst: arranca directo en gallery (el gate de signup lo pone el engine).
	FlowPhotoFirst FlowVariant = "photo_first"
	// FlowSkipGallery omite gallery; las fotos vienen resueltas de afuera.
	FlowSkipGallery FlowVariant = "skip_gallery"
)

// Style es una entrada del catálogo de estilos.
type Style struct {
	ID          int    `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	ImageSrc    string `yaml:"image_src"`
	Available   bool   `yaml:"available"`
}

// Photo es una entrada del catálogo de galería.
type Photo struct {
	ID  int    `yaml:"id"`
	Src string `yaml:"src"`
}

// Config agrupa variante de flujo, límites, timers y catálogos. Los timers se
// expresan en ms.
type Config struct {
	Flow            FlowVariant `yaml:"flow"`
	MaxPhotos       int         `yaml:"max_photos"`
	FreeGenerations int         `yaml:"free_generations"`
	DefaultLanguage string      `yaml:"default_language"`

	UploadMillis   int `yaml:"upload_millis"`
	GenerateMillis int `yaml:"generate_millis"`
	CloseMillis    int `yaml:"close_millis"`

	Styles  []Style `yaml:"styles"`
	Gallery []Photo `yaml:"gallery"`
}

// Default es la configuración de producción actual.
func Default() Config {
	return Config{
		Flow:            FlowFull,
		MaxPhotos:       3,
		FreeGenerations: 2,
		DefaultLanguage: "ko",
		UploadMillis:    2000,
		GenerateMillis:  3000,
		CloseMillis:     300,
		Styles: []Style{
			{ID: 1, Name: "꽃단장 프로필", Description: "화려한 색감과 꽃 장식", ImageSrc: "/flower-profile-dog.png", Available: true},
			{ID: 2, Name: "애니메이션 스타일", Description: "동화같은 따뜻한 분위기", ImageSrc: "/ghibli-style-dog.png", Available: false},
			{ID: 3, Name: "야구", Description: "응원 팀 정보 필요", ImageSrc: "/baseball-dog-new.png", Available: false},
		},
		Gallery: []Photo{
			{ID: 1, Src: "/gallery-dog.jpeg"},
			{ID: 2, Src: "/pet-profiles/gomsooni.png"},
			{ID: 3, Src: "/pet-profiles/pudding.png"},
			{ID: 4, Src: "/pet-profiles/nyangi.png"},
			{ID: 5, Src: "/pet-profiles/roy.png"},
			{ID: 6, Src: "/pet-profiles/luka.png"},
			{ID: 7, Src: "/pet-profiles/roongji.png"},
			{ID: 8, Src: "/pet-profiles/milk.png"},
			{ID: 9, Src: "/duksun.jpeg"},
			{ID: 10, Src: "/kancho-home.jpeg"},
			{ID: 11, Src: "/kancho-profile.png"},
			{ID: 12, Src: "/flower-profile-dog.png"},
		},
	}
}

// Load lee un YAML y lo mezcla sobre los defaults (solo campos presentes).
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv usa CONFIG_PATH si está definido; si no, defaults.
func FromEnv() (Config, error) {
	if path := strings.TrimSpace(os.Getenv("CONFIG_PATH")); path != "" {
		return Load(path)
	}
	return Default(), nil
}

func (c Config) Validate() error {
	switch c.Flow {
	case FlowFull, FlowPhotoFirst, FlowSkipGallery:
	default:
		return fmt.Errorf("config: unknown flow %q", c.Flow)
	}
	if c.MaxPhotos < 1 {
		return errors.New("config: max_photos must be >= 1")
	}
	if c.FreeGenerations < 0 {
		return errors.New("config: free_generations must be >= 0")
	}
	if len(c.Styles) == 0 {
		return errors.New("config: empty style catalog")
	}
	if len(c.Gallery) == 0 {
		return errors.New("config: empty gallery catalog")
	}
	return nil
}

func (c Config) UploadDelay() time.Duration   { return time.Duration(c.UploadMillis) * time.Millisecond }
func (c Config) GenerateDelay() time.Duration { return time.Duration(c.GenerateMillis) * time.Millisecond }
func (c Config) CloseDelay() time.Duration    { return time.Duration(c.CloseMillis) * time.Millisecond }
