package wizard

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	memmirror "pet-studio/internal/adapters/persist/memory"
	"pet-studio/internal/adapters/remote/mockapi"
	"pet-studio/internal/domain/catalog"
	"pet-studio/internal/domain/quota"
	"pet-studio/internal/domain/session"
	"pet-studio/internal/domain/store"
	"pet-studio/internal/platform/logger"
)

// -------------------------
// Rig de prueba
// -------------------------

func testCatalog() *catalog.Catalog {
	styles := []catalog.StyleOption{
		{ID: 1, Name: "꽃단장 프로필", Available: true},
		{ID: 2, Name: "애니메이션 스타일", Available: false},
	}
	photos := make([]catalog.GalleryPhoto, 0, 12)
	for i := 1; i <= 12; i++ {
		photos = append(photos, catalog.GalleryPhoto{ID: i, Src: "/photo.png"})
	}
	return catalog.New(styles, photos)
}

type rig struct {
	engine   *Engine
	sess     *session.Manager
	store    *store.Store
	remote   *mockapi.Client
	outcomes chan Outcome
}

func newTestRig(t *testing.T, flow Flow) *rig {
	t.Helper()

	st := store.New(memmirror.NewMirror(), store.Options{QuotaLimit: 2})
	if err := st.Load(); err != nil {
		t.Fatalf("store load: %v", err)
	}

	rc := mockapi.NewClient()
	sess := session.NewManager(st, rc, 2)
	log := logger.New(logger.Options{Level: logger.Error})

	e := NewEngine(Config{
		Flow:          flow,
		UploadDelay:   10 * time.Millisecond,
		GenerateDelay: 10 * time.Millisecond,
		CloseDelay:    5 * time.Millisecond,
	}, sess, st, rc, testCatalog(), log)

	ch := make(chan Outcome, 16)
	e.SetNotify(func(o Outcome) { ch <- o })

	return &rig{engine: e, sess: sess, store: st, remote: rc, outcomes: ch}
}

func (r *rig) login(t *testing.T) {
	t.Helper()
	if _, err := r.sess.Login(context.Background(), "luna@example.com", "kakao"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

// waitSignal drena outcomes hasta encontrar la señal esperada.
func waitSignal(t *testing.T, ch <-chan Outcome, want Signal) Outcome {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case o := <-ch:
			if o.Signal == want {
				return o
			}
		case <-deadline:
			t.Fatalf("timed out waiting for signal %q", want)
		}
	}
}

// waitError drena outcomes hasta encontrar uno con Err.
func waitError(t *testing.T, ch <-chan Outcome) Outcome {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case o := <-ch:
			if o.Err != nil {
				return o
			}
		case <-deadline:
			t.Fatalf("timed out waiting for outcome error")
		}
	}
}

// advanceToUploading lleva un wizard logueado hasta el paso uploading.
func (r *rig) advanceToUploading(t *testing.T, petName string) {
	t.Helper()
	ctx := context.Background()

	r.engine.Start()
	if _, _, err := r.engine.Advance(ctx, Payload{}); err != nil {
		t.Fatalf("advance guidelines: %v", err)
	}
	if _, _, err := r.engine.Advance(ctx, Payload{Photos: []int{7}}); err != nil {
		t.Fatalf("advance gallery: %v", err)
	}
	st, _, err := r.engine.Advance(ctx, Payload{StyleID: 1, PetInfo: &PetInfo{Name: petName}})
	if err != nil {
		t.Fatalf("advance style: %v", err)
	}
	if st.Step != StepUploading {
		t.Fatalf("expected uploading, got %s", st.Step)
	}
}

// -------------------------
// Tests
// -------------------------

func TestEngine_HappyPath(t *testing.T) {
	r := newTestRig(t, FullFlow(3))
	r.login(t)
	ctx := context.Background()

	st := r.engine.Start()
	if st.Step != StepGuidelines || !st.Active {
		t.Fatalf("expected active wizard at guidelines, got %+v", st)
	}

	st, sig, err := r.engine.Advance(ctx, Payload{})
	if err != nil || sig != SignalNone || st.Step != StepGallery {
		t.Fatalf("guidelines advance: step=%s sig=%q err=%v", st.Step, sig, err)
	}

	st, sig, err = r.engine.Advance(ctx, Payload{Photos: []int{7}})
	if err != nil || sig != SignalNone || st.Step != StepStyleSelection {
		t.Fatalf("gallery advance: step=%s sig=%q err=%v", st.Step, sig, err)
	}

	st, _, err = r.engine.Advance(ctx, Payload{StyleID: 1, PetInfo: &PetInfo{Name: "Milo"}})
	if err != nil || st.Step != StepUploading {
		t.Fatalf("style advance: step=%s err=%v", st.Step, err)
	}

	done := waitSignal(t, r.outcomes, SignalCompleted)
	if done.State.Step != StepResult {
		t.Fatalf("expected result step, got %s", done.State.Step)
	}
	if done.Err != nil {
		t.Fatalf("unexpected commit error: %v", done.Err)
	}

	if used := r.store.Quota().Used; used != 1 {
		t.Fatalf("expected used=1, got %d", used)
	}

	results := r.store.ProfileResults()
	if len(results) != 1 {
		t.Fatalf("expected 1 profile result, got %d", len(results))
	}
	if results[0].PetName != "Milo" {
		t.Fatalf("expected denormalized pet name Milo, got %q", results[0].PetName)
	}
	if _, ok := r.store.PetByID(results[0].PetID); !ok {
		t.Fatalf("profile result references unknown pet %d", results[0].PetID)
	}
}

func TestEngine_BackFromFirstStepFails(t *testing.T) {
	r := newTestRig(t, FullFlow(3))
	r.engine.Start()

	if _, err := r.engine.Back(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestEngine_BackPreservesSelection(t *testing.T) {
	r := newTestRig(t, FullFlow(3))
	r.login(t)
	ctx := context.Background()

	r.engine.Start()
	if _, _, err := r.engine.Advance(ctx, Payload{}); err != nil {
		t.Fatalf("advance guidelines: %v", err)
	}
	if _, _, err := r.engine.Advance(ctx, Payload{Photos: []int{2, 5}}); err != nil {
		t.Fatalf("advance gallery: %v", err)
	}

	st, err := r.engine.Back()
	if err != nil {
		t.Fatalf("back: %v", err)
	}
	if st.Step != StepGallery {
		t.Fatalf("expected gallery, got %s", st.Step)
	}
	if !reflect.DeepEqual(st.Photos, []int{2, 5}) {
		t.Fatalf("expected selection preserved, got %v", st.Photos)
	}
}

func TestEngine_GalleryValidation(t *testing.T) {
	r := newTestRig(t, FullFlow(3))
	r.login(t)
	ctx := context.Background()

	r.engine.Start()
	if _, _, err := r.engine.Advance(ctx, Payload{}); err != nil {
		t.Fatalf("advance guidelines: %v", err)
	}

	// Selección vacía.
	_, _, err := r.engine.Advance(ctx, Payload{Photos: []int{}})
	var valErr *ValidationError
	if !errors.As(err, &valErr) || valErr.Reason != ReasonEmptySelection {
		t.Fatalf("expected empty_selection, got %v", err)
	}

	// Más fotos que el tope.
	_, _, err = r.engine.Advance(ctx, Payload{Photos: []int{1, 2, 3, 4}})
	if !errors.As(err, &valErr) || valErr.Reason != ReasonEmptySelection {
		t.Fatalf("expected empty_selection for oversize selection, got %v", err)
	}

	// Foto fuera del catálogo.
	_, _, err = r.engine.Advance(ctx, Payload{Photos: []int{99}})
	if !errors.As(err, &valErr) || valErr.Reason != ReasonUnknownPhoto {
		t.Fatalf("expected unknown_photo, got %v", err)
	}

	// La validación no mueve el paso.
	if st := r.engine.Snapshot(); st.Step != StepGallery {
		t.Fatalf("expected to stay at gallery, got %s", st.Step)
	}
}

func TestEngine_UnavailableStyle(t *testing.T) {
	r := newTestRig(t, FullFlow(3))
	r.login(t)
	ctx := context.Background()

	r.engine.Start()
	if _, _, err := r.engine.Advance(ctx, Payload{}); err != nil {
		t.Fatalf("advance guidelines: %v", err)
	}
	if _, _, err := r.engine.Advance(ctx, Payload{Photos: []int{1}}); err != nil {
		t.Fatalf("advance gallery: %v", err)
	}

	_, _, err := r.engine.Advance(ctx, Payload{StyleID: 2})
	var valErr *ValidationError
	if !errors.As(err, &valErr) || valErr.Reason != ReasonUnavailableStyle {
		t.Fatalf("expected unavailable_style, got %v", err)
	}
	if st := r.engine.Snapshot(); st.Step != StepStyleSelection {
		t.Fatalf("expected to stay at styleSelection, got %s", st.Step)
	}
}

func TestEngine_AuthInterruptionAndResume(t *testing.T) {
	r := newTestRig(t, FullFlow(3))
	ctx := context.Background()

	r.engine.Start()
	if _, _, err := r.engine.Advance(ctx, Payload{}); err != nil {
		t.Fatalf("advance guidelines: %v", err)
	}

	// Deslogueado: el advance de galería queda suspendido.
	st, sig, err := r.engine.Advance(ctx, Payload{Photos: []int{2}})
	if err != nil {
		t.Fatalf("gallery advance: %v", err)
	}
	if sig != SignalRequireAuth {
		t.Fatalf("expected requireAuth signal, got %q", sig)
	}
	if st.Step != StepGallery || st.Pending == nil || st.Pending.Reason != SignalRequireAuth {
		t.Fatalf("expected pending auth at gallery, got %+v", st)
	}

	// Resume sin login todavía: estado intacto.
	if _, err := r.engine.ResumeAfterAuth(ctx); err == nil {
		t.Fatalf("expected resume to fail before login")
	}
	if st := r.engine.Snapshot(); st.Pending == nil {
		t.Fatalf("expected pending to survive failed resume")
	}

	r.login(t)

	st, err = r.engine.ResumeAfterAuth(ctx)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if st.Step != StepStyleSelection || st.Pending != nil {
		t.Fatalf("expected styleSelection after resume, got %+v", st)
	}
	// No se vuelve a pedir la selección.
	if !reflect.DeepEqual(st.Photos, []int{2}) {
		t.Fatalf("expected photos preserved across auth, got %v", st.Photos)
	}
}

func TestEngine_QuotaExhaustion(t *testing.T) {
	r := newTestRig(t, FullFlow(3))
	r.login(t)

	if err := r.store.SetQuota(quota.Counter{Used: 2, Limit: 2}); err != nil {
		t.Fatalf("set quota: %v", err)
	}

	r.advanceToUploading(t, "Milo")

	out := waitSignal(t, r.outcomes, SignalQuotaExceeded)
	if out.State.Pending == nil || out.State.Pending.Reason != SignalQuotaExceeded {
		t.Fatalf("expected pending quota, got %+v", out.State)
	}
	if out.State.Step == StepGenerating || out.State.Step == StepResult {
		t.Fatalf("generating must never start without quota, got %s", out.State.Step)
	}

	// Sin cobro y sin resultado.
	if used := r.store.Quota().Used; used != 2 {
		t.Fatalf("expected used unchanged at 2, got %d", used)
	}
	if n := len(r.store.ProfileResults()); n != 0 {
		t.Fatalf("expected no profile results, got %d", n)
	}
}

func TestEngine_CloseCancelsPendingUpload(t *testing.T) {
	r := newTestRig(t, FullFlow(3))
	r.login(t)
	r.advanceToUploading(t, "Milo")

	st := r.engine.Close()
	if st.Active {
		t.Fatalf("expected inactive state after close")
	}

	// El timer de subida quedó invalidado: no debe llegar ningún outcome.
	time.Sleep(60 * time.Millisecond)
	select {
	case o := <-r.outcomes:
		t.Fatalf("unexpected outcome after close: %+v", o)
	default:
	}

	if used := r.store.Quota().Used; used != 0 {
		t.Fatalf("close must not charge quota, got used=%d", used)
	}

	// El reset diferido ya corrió.
	if st := r.engine.Snapshot(); st.Active || st.Step != StepGuidelines {
		t.Fatalf("expected reset wizard, got %+v", st)
	}
}

func TestEngine_StaleCompletionAfterRestart(t *testing.T) {
	r := newTestRig(t, FullFlow(3))
	r.login(t)
	r.advanceToUploading(t, "Milo")

	// Un Start inmediato invalida el completion en vuelo: el closure viejo no
	// puede mutar la instancia nueva.
	fresh := r.engine.Start()

	time.Sleep(60 * time.Millisecond)
	st := r.engine.Snapshot()
	if st.Step != StepGuidelines || !st.Active {
		t.Fatalf("expected fresh wizard untouched, got %+v", st)
	}
	if st.ID != fresh.ID {
		t.Fatalf("expected same fresh instance")
	}
	if used := r.store.Quota().Used; used != 0 {
		t.Fatalf("stale completion must not charge quota, got used=%d", used)
	}
}

func TestEngine_AdvanceAtResultIsInvalid(t *testing.T) {
	r := newTestRig(t, FullFlow(3))
	r.login(t)
	r.advanceToUploading(t, "Milo")
	waitSignal(t, r.outcomes, SignalCompleted)

	_, _, err := r.engine.Advance(context.Background(), Payload{})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition at result, got %v", err)
	}
	// La transición ilegal resetea a un estado inicial sano.
	if st := r.engine.Snapshot(); st.Step != StepGuidelines || !st.Active {
		t.Fatalf("expected reset to initial step, got %+v", st)
	}
}

func TestEngine_BackAtResultIsInvalid(t *testing.T) {
	r := newTestRig(t, FullFlow(3))
	r.login(t)
	r.advanceToUploading(t, "Milo")
	waitSignal(t, r.outcomes, SignalCompleted)

	// Result es terminal: volver atrás dejaría un generating sin timer armado.
	_, err := r.engine.Back()
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition at result, got %v", err)
	}
	if st := r.engine.Snapshot(); st.Step != StepGuidelines || !st.Active {
		t.Fatalf("expected reset to initial step, got %+v", st)
	}
}

func TestEngine_RemoteFailureThenRetry(t *testing.T) {
	r := newTestRig(t, FullFlow(3))
	r.login(t)
	r.advanceToUploading(t, "Milo")

	// La próxima llamada remota (CreatePet al terminar la generación) falla.
	r.remote.ArmFailure()

	out := waitError(t, r.outcomes)
	if out.State.Step != StepGenerating {
		t.Fatalf("expected state left at generating for retry, got %s", out.State.Step)
	}
	if used := r.store.Quota().Used; used != 0 {
		t.Fatalf("failed generation must not charge quota, got used=%d", used)
	}

	if _, err := r.engine.Retry(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}

	done := waitSignal(t, r.outcomes, SignalCompleted)
	if done.State.Step != StepResult {
		t.Fatalf("expected result after retry, got %s", done.State.Step)
	}
	if used := r.store.Quota().Used; used != 1 {
		t.Fatalf("expected used=1 after successful retry, got %d", used)
	}
}

func TestEngine_TogglePhoto(t *testing.T) {
	r := newTestRig(t, FullFlow(3))
	r.login(t)
	ctx := context.Background()

	r.engine.Start()
	if _, _, err := r.engine.Advance(ctx, Payload{}); err != nil {
		t.Fatalf("advance guidelines: %v", err)
	}

	for _, id := range []int{1, 2, 3} {
		if _, err := r.engine.TogglePhoto(id); err != nil {
			t.Fatalf("toggle %d: %v", id, err)
		}
	}
	// Cuarta foto en el tope: no-op.
	st, err := r.engine.TogglePhoto(4)
	if err != nil {
		t.Fatalf("toggle at bound: %v", err)
	}
	if !reflect.DeepEqual(st.Photos, []int{1, 2, 3}) {
		t.Fatalf("expected [1 2 3], got %v", st.Photos)
	}

	// Avanza con la selección acumulada (sin payload).
	st, _, err = r.engine.Advance(ctx, Payload{})
	if err != nil || st.Step != StepStyleSelection {
		t.Fatalf("advance with accumulated selection: step=%s err=%v", st.Step, err)
	}
}

func TestEngine_StartIsIdempotentBeforeTransitions(t *testing.T) {
	r := newTestRig(t, FullFlow(3))

	first := r.engine.Start()
	if _, err := r.engine.TogglePhoto(1); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("toggle outside gallery should be invalid, got %v", err)
	}

	second := r.engine.Start()
	if second.Step != first.Step || len(second.Photos) != 0 {
		t.Fatalf("expected reset selections at same step, got %+v", second)
	}
}

func TestEngine_SkipGalleryFlow(t *testing.T) {
	r := newTestRig(t, SkipGalleryFlow(3))
	r.login(t)

	r.engine.Start()
	st, _, err := r.engine.Advance(context.Background(), Payload{})
	if err != nil || st.Step != StepStyleSelection {
		t.Fatalf("guidelines must jump straight to styleSelection, got %s err=%v", st.Step, err)
	}
}

func TestEngine_PhotoFirstFlow(t *testing.T) {
	r := newTestRig(t, PhotoFirstFlow(1))
	ctx := context.Background()

	st := r.engine.Start()
	if st.Step != StepGallery {
		t.Fatalf("photo-first flow must start at gallery, got %s", st.Step)
	}

	// Deslogueado: el gate de signup aplica igual que en el flujo completo.
	st, sig, err := r.engine.Advance(ctx, Payload{Photos: []int{5}})
	if err != nil || sig != SignalRequireAuth {
		t.Fatalf("expected requireAuth, got sig=%q err=%v", sig, err)
	}

	r.login(t)
	st, err = r.engine.ResumeAfterAuth(ctx)
	if err != nil || st.Step != StepStyleSelection {
		t.Fatalf("resume: step=%s err=%v", st.Step, err)
	}

	// back() desde el primer paso del flow variante también falla.
	if _, err := r.engine.Back(); err != nil {
		t.Fatalf("back to gallery: %v", err)
	}
	if _, err := r.engine.Back(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition at first step, got %v", err)
	}
}
