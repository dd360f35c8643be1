package catalog

// StyleOption es un estilo de retrato del catálogo. Los no disponibles se
// muestran pero no se pueden seleccionar.
type StyleOption struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageSrc    string `json:"imageSrc"`
	Available   bool   `json:"available"`
}

// GalleryPhoto es una foto del catálogo fijo de galería.
type GalleryPhoto struct {
	ID  int    `json:"id"`
	Src string `json:"src"`
}

// Catalog agrupa estilos y galería. Inmutable después de construido.
type Catalog struct {
	styles  []StyleOption
	photos  []GalleryPhoto
	byStyle map[int]StyleOption
	byPhoto map[int]GalleryPhoto
}

func New(styles []StyleOption, photos []GalleryPhoto) *Catalog {
	c := &Catalog{
		styles:  make([]StyleOption, len(styles)),
		photos:  make([]GalleryPhoto, len(photos)),
		byStyle: make(map[int]StyleOption, len(styles)),
		byPhoto: make(map[int]GalleryPhoto, len(photos)),
	}
	copy(c.styles, styles)
	copy(c.photos, photos)
	for _, s := range styles {
		c.byStyle[s.ID] = s
	}
	for _, p := range photos {
		c.byPhoto[p.ID] = p
	}
	return c
}

func (c *Catalog) Styles() []StyleOption {
	out := make([]StyleOption, len(c.styles))
	copy(out, c.styles)
	return out
}

func (c *Catalog) Gallery() []GalleryPhoto {
	out := make([]GalleryPhoto, len(c.photos))
	copy(out, c.photos)
	return out
}

func (c *Catalog) Style(id int) (StyleOption, bool) {
	s, ok := c.byStyle[id]
	return s, ok
}

// StyleAvailable: existe y está habilitado para seleccionar.
func (c *Catalog) StyleAvailable(id int) bool {
	s, ok := c.byStyle[id]
	return ok && s.Available
}

func (c *Catalog) PhotoExists(id int) bool {
	_, ok := c.byPhoto[id]
	return ok
}
