package wizard

// toggleSelection implementa la semántica de selección de fotos:
// - id ya presente → se quita (toggle);
// - id ausente y hay cupo → se agrega al final (orden de selección);
// - id ausente y max alcanzado:
//   - max == 1: reemplaza la selección actual;
//   - max > 1: no-op (no es error).
func toggleSelection(sel []int, id, max int) []int {
	for i, v := range sel {
		if v == id {
			out := make([]int, 0, len(sel)-1)
			out = append(out, sel[:i]...)
			out = append(out, sel[i+1:]...)
			return out
		}
	}

	if len(sel) >= max {
		if max == 1 {
			return []int{id}
		}
		return sel
	}

	out := make([]int, 0, len(sel)+1)
	out = append(out, sel...)
	out = append(out, id)
	return out
}
