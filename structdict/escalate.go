package structdict

import (
	"go.uber.org/zap"

	"github.com/loomlang/bespoke/tv"
	"github.com/loomlang/bespoke/vanilla"
)

// escalateWithCapacity copies the live entries into a vanilla dict with
// room for capacity entries. The receiver keeps all its references;
// every value gains one for the vanilla copy.
func (d *Dict) escalateWithCapacity(capacity int, reason string) *vanilla.Dict {
	if capacity < d.Size() {
		capacity = d.Size()
	}
	logger.Debug("escalated struct dict to vanilla",
		zap.String("reason", reason),
		zap.String("layout", d.layout.String()),
		zap.Int("size", d.Size()),
	)

	vad := vanilla.MakeReserve(capacity, d.IsLegacy())
	for pos := 0; pos < d.Size(); pos++ {
		slot := d.getSlotInPos(pos)
		key := d.layout.Field(slot).Key
		v := d.TypedValueUnchecked(slot)
		tv.IncRef(v)
		vad = vad.SetStrMove(key, v)
	}
	return vad
}

// EscalateToVanilla returns a vanilla copy of the instance. The
// receiver keeps its references.
func (d *Dict) EscalateToVanilla(reason string) *vanilla.Dict {
	return d.escalateWithCapacity(d.Size(), reason)
}
