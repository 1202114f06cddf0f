package grpc

import (
	"github.com/litetable/litetable-db/pkg/proto"
	"github.com/litetable/litetable-mapper/internal/litetable"
)

func convertToProtoData(rows []*litetable.Row) *proto.LitetableData {
	protoData := &proto.LitetableData{
		Rows: make(map[string]*proto.Row, len(rows)),
	}

	for _, row := range rows {
		protoRow := &proto.Row{
			Key:  row.Key,
			Cols: make(map[string]*proto.VersionedQualifier, len(row.Columns)),
		}

		for familyName, versionedQualifiers := range row.Columns {
			columnFamily := &proto.VersionedQualifier{
				Qualifiers: make(map[string]*proto.QualifierValues, len(versionedQualifiers)),
			}

			for qualifierName, timestampedValues := range versionedQualifiers {
				qualifierValues := &proto.QualifierValues{
					Values: make([]*proto.TimestampedValue, 0, len(timestampedValues)),
				}
				for _, tv := range timestampedValues {
					qualifierValues.Values = append(qualifierValues.Values, &proto.TimestampedValue{
						Value:         tv.Value,
						TimestampUnix: tv.Timestamp,
					})
				}
				columnFamily.Qualifiers[qualifierName] = qualifierValues
			}

			protoRow.Cols[familyName] = columnFamily
		}

		protoData.Rows[row.Key] = protoRow
	}

	return protoData
}
