package enginestub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/patrick-jessen/enginectl/internal/logging"
	"github.com/patrick-jessen/enginectl/internal/settings"
)

// Handler returns the HTTP surface of the engine.
func (e *Engine) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(e.recordRequests)

	router.HandleFunc("/window/vsync", e.getVSync).Methods(http.MethodGet)
	router.HandleFunc("/window/vsync", e.setVSync).Methods(http.MethodPost)
	router.HandleFunc("/window/fullScreen", e.getFullScreen).Methods(http.MethodGet)
	router.HandleFunc("/window/fullScreen", e.setFullScreen).Methods(http.MethodPost)
	router.HandleFunc("/window/size", e.getSize).Methods(http.MethodGet)
	router.HandleFunc("/window/size", e.setSize).Methods(http.MethodPost)
	router.HandleFunc("/window/apply", e.applyWindow).Methods(http.MethodPost)

	router.HandleFunc("/texture/filter", e.getFilter).Methods(http.MethodGet)
	router.HandleFunc("/texture/filter", e.setFilter).Methods(http.MethodPost)
	router.HandleFunc("/texture/resolution", e.getTextureRes).Methods(http.MethodGet)
	router.HandleFunc("/texture/resolution", e.setTextureRes).Methods(http.MethodPost)
	router.HandleFunc("/texture/apply", e.applyTexture).Methods(http.MethodPost)

	router.HandleFunc("/renderer/aa", e.getAA).Methods(http.MethodGet)
	router.HandleFunc("/renderer/aa", e.setAA).Methods(http.MethodPost)
	router.HandleFunc("/renderer/shadowResolution", e.getShadowRes).Methods(http.MethodGet)
	router.HandleFunc("/renderer/shadowResolution", e.setShadowRes).Methods(http.MethodPost)
	router.HandleFunc("/renderer/apply", e.applyRenderer).Methods(http.MethodPost)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	return cors(router)
}

// Serve runs the engine on addr until ctx is cancelled.
func (e *Engine) Serve(ctx context.Context, addr string) error {
	logger := logging.Get(ctx)
	srv := &http.Server{
		Addr:              addr,
		Handler:           e.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("engine stub listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("engine stub failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down engine stub: %w", err)
		}
		<-errCh
		return nil
	}
}

// recordRequests journals each request and injects configured failures.
func (e *Engine) recordRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		path := strings.TrimPrefix(r.URL.Path, "/")
		e.record(Request{Method: r.Method, Path: path, Body: string(body)})

		logging.Get(r.Context()).Debug().
			Str("method", r.Method).
			Str("path", path).
			Msg("engine stub request")

		if e.shouldFail(path) {
			http.Error(w, "injected failure", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (e *Engine) getVSync(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, settings.VSyncWire{VSync: e.Current().VSync})
}

func (e *Engine) setVSync(w http.ResponseWriter, r *http.Request) {
	var body settings.VSyncWire
	if !readJSON(w, r, &body) {
		return
	}
	e.update(func(current, staged *State) {
		current.VSync = body.VSync
		staged.VSync = body.VSync
	})
	w.WriteHeader(http.StatusOK)
}

func (e *Engine) getFullScreen(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, settings.FullScreenWire{FullScreen: e.Current().FullScreen})
}

func (e *Engine) setFullScreen(w http.ResponseWriter, r *http.Request) {
	var body settings.FullScreenWire
	if !readJSON(w, r, &body) {
		return
	}
	e.update(func(current, staged *State) {
		current.FullScreen = body.FullScreen
		staged.FullScreen = body.FullScreen
	})
	w.WriteHeader(http.StatusOK)
}

func (e *Engine) getSize(w http.ResponseWriter, _ *http.Request) {
	s := e.Current()
	writeJSON(w, settings.SizeWire{Width: s.Width, Height: s.Height})
}

func (e *Engine) setSize(w http.ResponseWriter, r *http.Request) {
	var body settings.SizeWire
	if !readJSON(w, r, &body) {
		return
	}
	if body.Width <= 0 || body.Height <= 0 {
		http.Error(w, "size must be positive", http.StatusBadRequest)
		return
	}
	e.update(func(_, staged *State) {
		staged.Width = body.Width
		staged.Height = body.Height
	})
	w.WriteHeader(http.StatusOK)
}

func (e *Engine) applyWindow(w http.ResponseWriter, _ *http.Request) {
	e.update(func(current, staged *State) {
		current.Width = staged.Width
		current.Height = staged.Height
	})
	w.WriteHeader(http.StatusOK)
}

func (e *Engine) getFilter(w http.ResponseWriter, _ *http.Request) {
	s := e.Current()
	writeJSON(w, settings.FilterWire{Filter: s.Filter, Aniso: s.Aniso})
}

func (e *Engine) setFilter(w http.ResponseWriter, r *http.Request) {
	var body settings.FilterWire
	if !readJSON(w, r, &body) {
		return
	}
	aniso := e.clampAniso(body.Aniso)
	e.update(func(_, staged *State) {
		staged.Filter = body.Filter
		staged.Aniso = aniso
	})
	w.WriteHeader(http.StatusOK)
}

func (e *Engine) getTextureRes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, settings.TextureResolutionWire{Res: e.Current().TextureRes})
}

func (e *Engine) setTextureRes(w http.ResponseWriter, r *http.Request) {
	var body settings.TextureResolutionWire
	if !readJSON(w, r, &body) {
		return
	}
	res := body.Res
	if res <= 0 {
		logging.Get(r.Context()).Warn().Int("res", res).Msg("resolution must be at least 1")
		res = 1
	}
	e.update(func(_, staged *State) {
		staged.TextureRes = res
	})
	w.WriteHeader(http.StatusOK)
}

func (e *Engine) applyTexture(w http.ResponseWriter, _ *http.Request) {
	e.update(func(current, staged *State) {
		current.Filter = staged.Filter
		current.Aniso = staged.Aniso
		current.TextureRes = staged.TextureRes
	})
	w.WriteHeader(http.StatusOK)
}

func (e *Engine) getAA(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, settings.AntialiasingWire{AA: e.Current().AA})
}

func (e *Engine) setAA(w http.ResponseWriter, r *http.Request) {
	var body settings.AntialiasingWire
	if !readJSON(w, r, &body) {
		return
	}
	aa := e.clampAA(body.AA)
	if aa != body.AA {
		logging.Get(r.Context()).Warn().Int("requested", body.AA).Int("used", aa).Msg("MSAA level not available")
	}
	e.update(func(_, staged *State) {
		staged.AA = aa
	})
	w.WriteHeader(http.StatusOK)
}

func (e *Engine) getShadowRes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, settings.ShadowResolutionWire{ShadowRes: e.Current().ShadowRes})
}

func (e *Engine) setShadowRes(w http.ResponseWriter, r *http.Request) {
	var body settings.ShadowResolutionWire
	if !readJSON(w, r, &body) {
		return
	}
	e.update(func(_, staged *State) {
		staged.ShadowRes = body.ShadowRes
	})
	w.WriteHeader(http.StatusOK)
}

func (e *Engine) applyRenderer(w http.ResponseWriter, _ *http.Request) {
	e.update(func(current, staged *State) {
		current.AA = staged.AA
		current.ShadowRes = staged.ShadowRes
	})
	w.WriteHeader(http.StatusOK)
}
