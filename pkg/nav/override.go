package nav

// override returns the selected record's explicit target for dir.
// Selector targets are resolved on every call.
func (sc *searchContext) override(dir Direction) Element {
	rec := sc.registry.Find(sc.selected)
	if rec == nil {
		return nil
	}
	target := rec.Override(dir)
	if target.IsZero() {
		return nil
	}
	return target.resolve(sc.scene)
}
