package router

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	filemirror "pet-studio/internal/adapters/persist/file"
	memmirror "pet-studio/internal/adapters/persist/memory"
	pgmirror "pet-studio/internal/adapters/persist/postgres"
	"pet-studio/internal/adapters/remote/httpapi"
	"pet-studio/internal/adapters/remote/mockapi"
	"pet-studio/internal/config"
	"pet-studio/internal/domain/catalog"
	"pet-studio/internal/domain/modal"
	"pet-studio/internal/domain/session"
	"pet-studio/internal/domain/store"
	"pet-studio/internal/domain/wizard"
	"pet-studio/internal/platform/logger"
	"pet-studio/internal/ports/remote"
)

type Options struct {
	Config config.Config
	Log    logger.Logger

	// Opcional: espejo durable explícito. Si no viene, se elige por env:
	// DB_DSN → postgres, STATE_DIR → archivos, si no in-memory.
	Mirror store.Mirror

	// Opcional: cliente remoto. Default: stand-in in-process (mockapi).
	Remote remote.Client
}

func NewRouter(opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = logger.NewFromEnv()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	cfg := opts.Config

	mirror := opts.Mirror
	if mirror == nil {
		mirror = mirrorFromEnv(log)
	}

	rc := opts.Remote
	if rc == nil {
		rc = remoteFromEnv(log)
	}

	st := store.New(mirror, store.Options{
		QuotaLimit:      cfg.FreeGenerations,
		DefaultLanguage: cfg.DefaultLanguage,
	})
	if err := st.Load(); err != nil {
		// Estado durable ilegible: se arranca de defaults, la sesión manda.
		log.Warn("durable state load failed", map[string]any{"err": err.Error()})
	}

	cat := catalog.New(stylesFromConfig(cfg), galleryFromConfig(cfg))
	sess := session.NewManager(st, rc, cfg.FreeGenerations)

	flow := wizard.FullFlow(cfg.MaxPhotos)
	switch cfg.Flow {
	case config.FlowPhotoFirst:
		flow = wizard.PhotoFirstFlow(cfg.MaxPhotos)
	case config.FlowSkipGallery:
		flow = wizard.SkipGalleryFlow(cfg.MaxPhotos)
	}

	engine := wizard.NewEngine(wizard.Config{
		Flow:          flow,
		UploadDelay:   cfg.UploadDelay(),
		GenerateDelay: cfg.GenerateDelay(),
		CloseDelay:    cfg.CloseDelay(),
	}, sess, st, rc, cat, log.With(map[string]any{"mod": "wizard"}))

	coord := modal.NewCoordinator(engine, log.With(map[string]any{"mod": "modal"}))
	engine.SetNotify(func(o wizard.Outcome) {
		if o.Err != nil {
			log.Warn("wizard async outcome", map[string]any{
				"step": string(o.State.Step),
				"err":  o.Err.Error(),
			})
		}
		coord.HandleOutcome(o)
	})

	// Rutas por módulo
	session.RegisterRoutes(r, sess)
	store.RegisterRoutes(r, st)
	catalog.RegisterRoutes(r, cat)
	wizard.RegisterRoutes(r, engine)
	modal.RegisterRoutes(r, coord, sess)

	return r
}

func mirrorFromEnv(log logger.Logger) store.Mirror {
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		db, err := pgmirror.Open(dsn)
		if err == nil {
			return pgmirror.NewMirror(db)
		}
		log.Warn("postgres mirror unavailable, falling back", map[string]any{"err": err.Error()})
	}

	if dir := os.Getenv("STATE_DIR"); dir != "" {
		m, err := filemirror.NewMirror(dir)
		if err == nil {
			return m
		}
		log.Warn("file mirror unavailable, falling back", map[string]any{"err": err.Error()})
	}

	return memmirror.NewMirror()
}

// remoteFromEnv elige el backend: REMOTE_API_URL → cliente HTTP real, si no el
// stand-in in-process con datos fabricados.
func remoteFromEnv(log logger.Logger) remote.Client {
	base := os.Getenv("REMOTE_API_URL")
	if base == "" {
		return mockapi.NewClient()
	}

	rc, err := httpapi.NewClient(httpapi.Config{
		BaseURL:      base,
		APIKey:       os.Getenv("REMOTE_API_KEY"),
		APIKeyHeader: os.Getenv("REMOTE_API_KEY_HEADER"),
	})
	if err != nil || !rc.IsConfigured() {
		fields := map[string]any{"base_url": base}
		if err != nil {
			fields["err"] = err.Error()
		}
		log.Warn("remote api unavailable, using in-process stand-in", fields)
		return mockapi.NewClient()
	}
	return rc
}

func stylesFromConfig(cfg config.Config) []catalog.StyleOption {
	out := make([]catalog.StyleOption, 0, len(cfg.Styles))
	for _, s := range cfg.Styles {
		out = append(out, catalog.StyleOption{
			ID:          s.ID,
			Name:        s.Name,
			Description: s.Description,
			ImageSrc:    s.ImageSrc,
			Available:   s.Available,
		})
	}
	return out
}

func galleryFromConfig(cfg config.Config) []catalog.GalleryPhoto {
	out := make([]catalog.GalleryPhoto, 0, len(cfg.Gallery))
	for _, p := range cfg.Gallery {
		out = append(out, catalog.GalleryPhoto{ID: p.ID, Src: p.Src})
	}
	return out
}
