package remote

import (
	"github.com/litetable/litetable-db/pkg/proto"
	"github.com/litetable/litetable-mapper/internal/litetable"
)

// mergeRows adds the cells of data to rows, keyed by row key.
func mergeRows(rows map[string]*litetable.Row, data *proto.LitetableData) {
	for key, protoRow := range data.GetRows() {
		if key == "" {
			key = protoRow.GetKey()
		}
		row, ok := rows[key]
		if !ok {
			row = &litetable.Row{Key: key, Columns: make(map[string]litetable.VersionedQualifier)}
			rows[key] = row
		}

		for family, protoFamily := range protoRow.GetCols() {
			vq, ok := row.Columns[family]
			if !ok {
				vq = make(litetable.VersionedQualifier)
				row.Columns[family] = vq
			}
			for qualifier, protoValues := range protoFamily.GetQualifiers() {
				values := vq[qualifier]
				for _, v := range protoValues.GetValues() {
					values = append(values, litetable.TimestampedValue{
						Value:     v.GetValue(),
						Timestamp: v.GetTimestampUnix(),
					})
				}
				litetable.SortVersions(values)
				vq[qualifier] = values
			}
		}
	}
}
