package messages

import (
	"github.com/google/uuid"

	"laconia/primitives"
)

// MetadataMinVersion and MetadataMaxVersion bound the supported
// api_version range for Metadata (api_key 3).
const (
	MetadataMinVersion = 0
	MetadataMaxVersion = 13
	MetadataAPIKey     = 3
)

// MetadataHeaderVersion returns 2 from v >= 9, else 1.
func MetadataHeaderVersion(version int16) int16 {
	if version < 9 {
		return 1
	}
	return 2
}

// MetadataTopic is one entry of MetadataRequest.Topics.
type MetadataTopic struct {
	TopicID      uuid.UUID // only meaningful at v >= 10
	Name         string
	NameNull     bool // only meaningful at v >= 10 (compact nullable)
	TaggedFields primitives.TaggedFields
}

func decodeMetadataTopic(buf []byte, version int16) (MetadataTopic, []byte, error) {
	var t MetadataTopic
	var err error
	rest := buf

	if version >= 10 {
		t.TopicID, rest, err = primitives.DecodeUUID(rest)
		if err != nil {
			return MetadataTopic{}, buf, err
		}
	}

	switch {
	case version < 9:
		t.Name, rest, err = primitives.DecodeString(rest)
	case version < 10:
		t.Name, rest, err = primitives.DecodeCompactString(rest)
	default:
		t.Name, t.NameNull, rest, err = primitives.DecodeCompactNullableString(rest)
	}
	if err != nil {
		return MetadataTopic{}, buf, err
	}

	if version >= 9 {
		t.TaggedFields, rest, err = primitives.DecodeTaggedFields(rest)
		if err != nil {
			return MetadataTopic{}, buf, err
		}
	}

	return t, rest, nil
}

func encodeMetadataTopic(out []byte, t MetadataTopic, version int16) []byte {
	if version >= 10 {
		out = primitives.EncodeUUID(out, t.TopicID)
	}
	switch {
	case version < 9:
		out = primitives.EncodeString(out, t.Name)
	case version < 10:
		out = primitives.EncodeCompactString(out, t.Name)
	default:
		out = primitives.EncodeCompactNullableString(out, t.Name, t.NameNull)
	}
	if version >= 9 {
		out = primitives.EncodeTaggedFields(out, t.TaggedFields)
	}
	return out
}

// MetadataRequest is the Metadata request body.
type MetadataRequest struct {
	Topics                             []MetadataTopic
	TopicsNull                         bool // compact array null (v >= 9) means "all topics"
	AllowAutoTopicCreation             bool
	IncludeClusterAuthorizedOperations bool
	IncludeTopicAuthorizedOperations   bool
	TaggedFields                       primitives.TaggedFields
}

// DecodeMetadataRequest decodes a MetadataRequest body at version.
func DecodeMetadataRequest(buf []byte, version int16) (MetadataRequest, []byte, error) {
	var req MetadataRequest
	var err error
	rest := buf

	if version < 9 {
		req.Topics, rest, err = primitives.DecodeArray(rest, version, decodeMetadataTopic)
	} else {
		req.Topics, req.TopicsNull, rest, err = primitives.DecodeCompactArray(rest, version, decodeMetadataTopic)
	}
	if err != nil {
		return MetadataRequest{}, buf, err
	}

	if version >= 4 {
		req.AllowAutoTopicCreation, rest, err = primitives.DecodeBool(rest)
		if err != nil {
			return MetadataRequest{}, buf, err
		}
	}

	if version >= 8 && version < 11 {
		req.IncludeClusterAuthorizedOperations, rest, err = primitives.DecodeBool(rest)
		if err != nil {
			return MetadataRequest{}, buf, err
		}
	}

	if version >= 8 {
		req.IncludeTopicAuthorizedOperations, rest, err = primitives.DecodeBool(rest)
		if err != nil {
			return MetadataRequest{}, buf, err
		}
	}

	if version >= 9 {
		req.TaggedFields, rest, err = primitives.DecodeTaggedFields(rest)
		if err != nil {
			return MetadataRequest{}, buf, err
		}
	}

	return req, rest, nil
}

// EncodeMetadataRequest encodes req at version, mirroring the decoder's
// gating. Provided for round-trip tests.
func EncodeMetadataRequest(out []byte, req MetadataRequest, version int16) []byte {
	if version < 9 {
		out = primitives.EncodeArray(out, req.Topics, version, encodeMetadataTopic)
	} else {
		out = primitives.EncodeCompactArray(out, req.Topics, req.TopicsNull, version, encodeMetadataTopic)
	}
	if version >= 4 {
		out = primitives.EncodeBool(out, req.AllowAutoTopicCreation)
	}
	if version >= 8 && version < 11 {
		out = primitives.EncodeBool(out, req.IncludeClusterAuthorizedOperations)
	}
	if version >= 8 {
		out = primitives.EncodeBool(out, req.IncludeTopicAuthorizedOperations)
	}
	if version >= 9 {
		out = primitives.EncodeTaggedFields(out, req.TaggedFields)
	}
	return out
}

// MetadataBroker is one entry of MetadataResponse.Brokers.
type MetadataBroker struct {
	NodeID       int32
	Host         string
	Port         int32
	Rack         string
	RackNull     bool
	TaggedFields primitives.TaggedFields
}

func decodeMetadataBroker(buf []byte, version int16) (MetadataBroker, []byte, error) {
	var b MetadataBroker
	var err error
	rest := buf

	b.NodeID, rest, err = primitives.DecodeInt32(rest)
	if err != nil {
		return MetadataBroker{}, buf, err
	}
	if version < 9 {
		b.Host, rest, err = primitives.DecodeString(rest)
	} else {
		b.Host, rest, err = primitives.DecodeCompactString(rest)
	}
	if err != nil {
		return MetadataBroker{}, buf, err
	}
	b.Port, rest, err = primitives.DecodeInt32(rest)
	if err != nil {
		return MetadataBroker{}, buf, err
	}
	if version >= 1 {
		if version < 9 {
			b.Rack, b.RackNull, rest, err = primitives.DecodeNullableString(rest)
		} else {
			b.Rack, b.RackNull, rest, err = primitives.DecodeCompactNullableString(rest)
		}
		if err != nil {
			return MetadataBroker{}, buf, err
		}
	}
	if version >= 9 {
		b.TaggedFields, rest, err = primitives.DecodeTaggedFields(rest)
		if err != nil {
			return MetadataBroker{}, buf, err
		}
	}
	return b, rest, nil
}

func encodeMetadataBroker(out []byte, b MetadataBroker, version int16) []byte {
	out = primitives.EncodeInt32(out, b.NodeID)
	if version < 9 {
		out = primitives.EncodeString(out, b.Host)
	} else {
		out = primitives.EncodeCompactString(out, b.Host)
	}
	out = primitives.EncodeInt32(out, b.Port)
	if version >= 1 {
		if version < 9 {
			out = primitives.EncodeNullableString(out, b.Rack, b.RackNull)
		} else {
			out = primitives.EncodeCompactNullableString(out, b.Rack, b.RackNull)
		}
	}
	if version >= 9 {
		out = primitives.EncodeTaggedFields(out, b.TaggedFields)
	}
	return out
}

// MetadataResponseTopic is one entry of MetadataResponse.Topics.
type MetadataResponseTopic struct {
	ErrorCode                 int16
	Name                      string
	NameNull                  bool
	TopicID                   uuid.UUID
	IsInternal                bool
	Partitions                []MetadataPartition
	TopicAuthorizedOperations int32
	TaggedFields              primitives.TaggedFields
}

// MetadataPartition is one entry of MetadataResponseTopic.Partitions.
type MetadataPartition struct {
	ErrorCode       int16
	PartitionIndex  int32
	LeaderID        int32
	LeaderEpoch     int32
	ReplicaNodes    []int32
	IsrNodes        []int32
	OfflineReplicas []int32
	TaggedFields    primitives.TaggedFields
}

func decodeInt32Elem(buf []byte, version int16) (int32, []byte, error) {
	return primitives.DecodeInt32(buf)
}

func encodeInt32Elem(out []byte, v int32, version int16) []byte {
	return primitives.EncodeInt32(out, v)
}

func decodeMetadataPartition(buf []byte, version int16) (MetadataPartition, []byte, error) {
	var p MetadataPartition
	var err error
	rest := buf

	p.ErrorCode, rest, err = primitives.DecodeInt16(rest)
	if err != nil {
		return MetadataPartition{}, buf, err
	}
	p.PartitionIndex, rest, err = primitives.DecodeInt32(rest)
	if err != nil {
		return MetadataPartition{}, buf, err
	}
	p.LeaderID, rest, err = primitives.DecodeInt32(rest)
	if err != nil {
		return MetadataPartition{}, buf, err
	}
	if version >= 7 {
		p.LeaderEpoch, rest, err = primitives.DecodeInt32(rest)
		if err != nil {
			return MetadataPartition{}, buf, err
		}
	}
	decodeReplicas := func(r []byte) ([]int32, []byte, error) {
		if version < 9 {
			return primitives.DecodeArray(r, version, decodeInt32Elem)
		}
		items, _, rest, err := primitives.DecodeCompactArray(r, version, decodeInt32Elem)
		return items, rest, err
	}
	p.ReplicaNodes, rest, err = decodeReplicas(rest)
	if err != nil {
		return MetadataPartition{}, buf, err
	}
	p.IsrNodes, rest, err = decodeReplicas(rest)
	if err != nil {
		return MetadataPartition{}, buf, err
	}
	if version >= 5 {
		p.OfflineReplicas, rest, err = decodeReplicas(rest)
		if err != nil {
			return MetadataPartition{}, buf, err
		}
	}
	if version >= 9 {
		p.TaggedFields, rest, err = primitives.DecodeTaggedFields(rest)
		if err != nil {
			return MetadataPartition{}, buf, err
		}
	}
	return p, rest, nil
}

func encodeMetadataPartition(out []byte, p MetadataPartition, version int16) []byte {
	out = primitives.EncodeInt16(out, p.ErrorCode)
	out = primitives.EncodeInt32(out, p.PartitionIndex)
	out = primitives.EncodeInt32(out, p.LeaderID)
	if version >= 7 {
		out = primitives.EncodeInt32(out, p.LeaderEpoch)
	}
	encodeReplicas := func(o []byte, items []int32) []byte {
		if version < 9 {
			return primitives.EncodeArray(o, items, version, encodeInt32Elem)
		}
		return primitives.EncodeCompactArray(o, items, false, version, encodeInt32Elem)
	}
	out = encodeReplicas(out, p.ReplicaNodes)
	out = encodeReplicas(out, p.IsrNodes)
	if version >= 5 {
		out = encodeReplicas(out, p.OfflineReplicas)
	}
	if version >= 9 {
		out = primitives.EncodeTaggedFields(out, p.TaggedFields)
	}
	return out
}

func decodeMetadataResponseTopic(buf []byte, version int16) (MetadataResponseTopic, []byte, error) {
	var t MetadataResponseTopic
	var err error
	rest := buf

	t.ErrorCode, rest, err = primitives.DecodeInt16(rest)
	if err != nil {
		return MetadataResponseTopic{}, buf, err
	}
	if version < 9 {
		t.Name, rest, err = primitives.DecodeString(rest)
	} else {
		t.Name, t.NameNull, rest, err = primitives.DecodeCompactNullableString(rest)
	}
	if err != nil {
		return MetadataResponseTopic{}, buf, err
	}
	if version >= 10 {
		t.TopicID, rest, err = primitives.DecodeUUID(rest)
		if err != nil {
			return MetadataResponseTopic{}, buf, err
		}
	}
	t.IsInternal, rest, err = primitives.DecodeBool(rest)
	if err != nil {
		return MetadataResponseTopic{}, buf, err
	}
	if version < 9 {
		t.Partitions, rest, err = primitives.DecodeArray(rest, version, decodeMetadataPartition)
	} else {
		t.Partitions, _, rest, err = primitives.DecodeCompactArray(rest, version, decodeMetadataPartition)
	}
	if err != nil {
		return MetadataResponseTopic{}, buf, err
	}
	if version >= 8 {
		t.TopicAuthorizedOperations, rest, err = primitives.DecodeInt32(rest)
		if err != nil {
			return MetadataResponseTopic{}, buf, err
		}
	}
	if version >= 9 {
		t.TaggedFields, rest, err = primitives.DecodeTaggedFields(rest)
		if err != nil {
			return MetadataResponseTopic{}, buf, err
		}
	}
	return t, rest, nil
}

func encodeMetadataResponseTopic(out []byte, t MetadataResponseTopic, version int16) []byte {
	out = primitives.EncodeInt16(out, t.ErrorCode)
	if version < 9 {
		out = primitives.EncodeString(out, t.Name)
	} else {
		out = primitives.EncodeCompactNullableString(out, t.Name, t.NameNull)
	}
	if version >= 10 {
		out = primitives.EncodeUUID(out, t.TopicID)
	}
	out = primitives.EncodeBool(out, t.IsInternal)
	if version < 9 {
		out = primitives.EncodeArray(out, t.Partitions, version, encodeMetadataPartition)
	} else {
		out = primitives.EncodeCompactArray(out, t.Partitions, false, version, encodeMetadataPartition)
	}
	if version >= 8 {
		out = primitives.EncodeInt32(out, t.TopicAuthorizedOperations)
	}
	if version >= 9 {
		out = primitives.EncodeTaggedFields(out, t.TaggedFields)
	}
	return out
}

// MetadataResponse is the Metadata response body.
type MetadataResponse struct {
	ThrottleTimeMs int32
	Brokers        []MetadataBroker
	ClusterID      string
	ClusterIDNull  bool
	ControllerID   int32
	Topics         []MetadataResponseTopic
	TaggedFields   primitives.TaggedFields
}

// EncodeMetadataResponse encodes resp at version.
func EncodeMetadataResponse(out []byte, resp MetadataResponse, version int16) []byte {
	if version >= 3 {
		out = primitives.EncodeInt32(out, resp.ThrottleTimeMs)
	}
	if version < 9 {
		out = primitives.EncodeArray(out, resp.Brokers, version, encodeMetadataBroker)
	} else {
		out = primitives.EncodeCompactArray(out, resp.Brokers, false, version, encodeMetadataBroker)
	}
	if version >= 2 {
		if version < 9 {
			out = primitives.EncodeNullableString(out, resp.ClusterID, resp.ClusterIDNull)
		} else {
			out = primitives.EncodeCompactNullableString(out, resp.ClusterID, resp.ClusterIDNull)
		}
	}
	if version >= 1 {
		out = primitives.EncodeInt32(out, resp.ControllerID)
	}
	if version < 9 {
		out = primitives.EncodeArray(out, resp.Topics, version, encodeMetadataResponseTopic)
	} else {
		out = primitives.EncodeCompactArray(out, resp.Topics, false, version, encodeMetadataResponseTopic)
	}
	if version >= 9 {
		out = primitives.EncodeTaggedFields(out, resp.TaggedFields)
	}
	return out
}

// DecodeMetadataResponse decodes resp at version. Provided for round-trip
// tests.
func DecodeMetadataResponse(buf []byte, version int16) (MetadataResponse, []byte, error) {
	var resp MetadataResponse
	var err error
	rest := buf

	if version >= 3 {
		resp.ThrottleTimeMs, rest, err = primitives.DecodeInt32(rest)
		if err != nil {
			return MetadataResponse{}, buf, err
		}
	}
	if version < 9 {
		resp.Brokers, rest, err = primitives.DecodeArray(rest, version, decodeMetadataBroker)
	} else {
		resp.Brokers, _, rest, err = primitives.DecodeCompactArray(rest, version, decodeMetadataBroker)
	}
	if err != nil {
		return MetadataResponse{}, buf, err
	}
	if version >= 2 {
		if version < 9 {
			resp.ClusterID, resp.ClusterIDNull, rest, err = primitives.DecodeNullableString(rest)
		} else {
			resp.ClusterID, resp.ClusterIDNull, rest, err = primitives.DecodeCompactNullableString(rest)
		}
		if err != nil {
			return MetadataResponse{}, buf, err
		}
	}
	if version >= 1 {
		resp.ControllerID, rest, err = primitives.DecodeInt32(rest)
		if err != nil {
			return MetadataResponse{}, buf, err
		}
	}
	if version < 9 {
		resp.Topics, rest, err = primitives.DecodeArray(rest, version, decodeMetadataResponseTopic)
	} else {
		resp.Topics, _, rest, err = primitives.DecodeCompactArray(rest, version, decodeMetadataResponseTopic)
	}
	if err != nil {
		return MetadataResponse{}, buf, err
	}
	if version >= 9 {
		resp.TaggedFields, rest, err = primitives.DecodeTaggedFields(rest)
		if err != nil {
			return MetadataResponse{}, buf, err
		}
	}
	return resp, rest, nil
}
