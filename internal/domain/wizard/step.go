package wizard

// Step es una etapa discreta del wizard de creación de perfil.
type Step string

const (
	StepGuidelines     Step = "guidelines"
	StepGallery        Step = "gallery"
	StepStyleSelection Step = "styleSelection"
	StepUploading      Step = "uploading"
	StepGenerating     Step = "generating"
	StepResult         Step = "result"
)

// Flow parametriza el wizard: secuencia ordenada de pasos + tope de fotos.
// Las variantes son datos, no código: "full" y "photo_first" difieren solo en
// la lista de pasos.
type Flow struct {
	Steps     []Step
	MaxPhotos int
}

// FullFlow: guidelines → gallery → styleSelection → uploading → generating → result.
func FullFlow(maxPhotos int) Flow {
	return Flow{
		Steps: []Step{
			StepGuidelines,
			StepGallery,
			StepStyleSelection,
			StepUploading,
			StepGenerating,
			StepResult,
		},
		MaxPhotos: maxPhotos,
	}
}

// PhotoFirstFlow arranca directo en la galería (el gate de signup lo aplica el
// engine igual que en el flujo completo).
func PhotoFirstFlow(maxPhotos int) Flow {
	return Flow{
		Steps: []Step{
			StepGallery,
			StepStyleSelection,
			StepUploading,
			StepGenerating,
			StepResult,
		},
		MaxPhotos: maxPhotos,
	}
}

// SkipGalleryFlow sirve cuando las fotos vienen resueltas de afuera.
func SkipGalleryFlow(maxPhotos int) Flow {
	return Flow{
		Steps: []Step{
			StepGuidelines,
			StepStyleSelection,
			StepUploading,
			StepGenerating,
			StepResult,
		},
		MaxPhotos: maxPhotos,
	}
}

func (f Flow) first() Step {
	if len(f.Steps) == 0 {
		return StepGuidelines
	}
	return f.Steps[0]
}

func (f Flow) indexOf(s Step) int {
	for i, st := range f.Steps {
		if st == s {
			return i
		}
	}
	return -1
}

func (f Flow) next(s Step) (Step, bool) {
	i := f.indexOf(s)
	if i < 0 || i+1 >= len(f.Steps) {
		return "", false
	}
	return f.Steps[i+1], true
}

func (f Flow) prev(s Step) (Step, bool) {
	i := f.indexOf(s)
	if i <= 0 {
		return "", false
	}
	return f.Steps[i-1], true
}
