package memstore

import "github.com/litetable/litetable-mapper/internal/litetable"

// NewBatch starts an empty batch.
func (m *Manager) NewBatch() litetable.Batch {
	return litetable.NewSerialBatch(m)
}
