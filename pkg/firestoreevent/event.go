// Package firestoreevent decodes Firestore document change events delivered as
// CloudEvents, in either protobuf or JSON data encoding.
package firestoreevent

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/googleapis/google-cloudevents-go/cloud/firestoredata"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const (
	TypeCreated = "google.cloud.firestore.document.v1.created"
	TypeUpdated = "google.cloud.firestore.document.v1.updated"
	TypeDeleted = "google.cloud.firestore.document.v1.deleted"
	TypeWritten = "google.cloud.firestore.document.v1.written"
)

const (
	ContentTypeProtobuf = "application/protobuf"
	ContentTypeJSON     = "application/json"
)

var ErrMalformedEvent = errors.New("malformed firestore event")

// DocumentEventData is the payload of a document event. Value is nil for
// deletes and OldValue is nil for creates.
type DocumentEventData struct {
	Value      *Document
	OldValue   *Document
	UpdateMask []string
}

// Document is a decoded Firestore document. Fields use the same Go types as
// the Firestore SDK's DocumentSnapshot.Data.
type Document struct {
	Name       string
	Fields     map[string]interface{}
	CreateTime time.Time
	UpdateTime time.Time
}

// Decode parses event data according to the CloudEvent's datacontenttype.
// Eventarc sends application/protobuf unless the trigger asks for JSON. An
// empty content type is sniffed: a JSON object is read as JSON, anything else
// as protobuf.
func Decode(data []byte, contentType string) (*DocumentEventData, error) {
	var raw firestoredata.DocumentEventData
	if err := unmarshal(data, contentType, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	ev := &DocumentEventData{
		Value:      convertDocument(raw.GetValue()),
		OldValue:   convertDocument(raw.GetOldValue()),
		UpdateMask: raw.GetUpdateMask().GetFieldPaths(),
	}
	if ev.Value == nil && ev.OldValue == nil {
		return nil, fmt.Errorf("%w: no document in event", ErrMalformedEvent)
	}
	return ev, nil
}

func unmarshal(data []byte, contentType string, msg proto.Message) error {
	mediaType := ""
	if contentType != "" {
		mt, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return fmt.Errorf("content type %q: %v", contentType, err)
		}
		mediaType = mt
	}

	switch {
	case mediaType == "":
		if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
			return protojson.UnmarshalOptions{DiscardUnknown: true}.Unmarshal(data, msg)
		}
		return proto.Unmarshal(data, msg)
	case strings.HasSuffix(mediaType, "json"):
		return protojson.UnmarshalOptions{DiscardUnknown: true}.Unmarshal(data, msg)
	case strings.HasSuffix(mediaType, "protobuf"):
		return proto.Unmarshal(data, msg)
	}
	return fmt.Errorf("unsupported content type %q", contentType)
}

func convertDocument(doc *firestoredata.Document) *Document {
	if doc == nil || doc.GetName() == "" {
		return nil
	}
	return &Document{
		Name:       doc.GetName(),
		Fields:     convertFields(doc.GetFields()),
		CreateTime: asTime(doc.GetCreateTime()),
		UpdateTime: asTime(doc.GetUpdateTime()),
	}
}

func asTime(ts *timestamppb.Timestamp) time.Time {
	if ts == nil {
		return time.Time{}
	}
	return ts.AsTime()
}

func convertFields(fields map[string]*firestoredata.Value) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for name, v := range fields {
		out[name] = convertValue(v)
	}
	return out
}

func convertValue(v *firestoredata.Value) interface{} {
	switch t := v.GetValueType().(type) {
	case *firestoredata.Value_BooleanValue:
		return t.BooleanValue
	case *firestoredata.Value_IntegerValue:
		return t.IntegerValue
	case *firestoredata.Value_DoubleValue:
		return t.DoubleValue
	case *firestoredata.Value_TimestampValue:
		return asTime(t.TimestampValue)
	case *firestoredata.Value_StringValue:
		return t.StringValue
	case *firestoredata.Value_BytesValue:
		return t.BytesValue
	case *firestoredata.Value_ReferenceValue:
		return t.ReferenceValue
	case *firestoredata.Value_MapValue:
		return convertFields(t.MapValue.GetFields())
	case *firestoredata.Value_ArrayValue:
		values := t.ArrayValue.GetValues()
		out := make([]interface{}, 0, len(values))
		for _, item := range values {
			out = append(out, convertValue(item))
		}
		return out
	case *firestoredata.Value_GeoPointValue:
		return map[string]interface{}{
			"latitude":  t.GeoPointValue.GetLatitude(),
			"longitude": t.GeoPointValue.GetLongitude(),
		}
	}
	// nullValue and unset values
	return nil
}

// MatchPath matches a document name against a pattern such as
// "projects/{projectId}/tasks/{taskId}" and returns the captured parameters.
// Full resource names ("projects/p/databases/(default)/documents/...") are
// matched on the part after "/documents/".
func MatchPath(pattern, name string) (map[string]string, bool) {
	if i := strings.Index(name, "/documents/"); i >= 0 {
		name = name[i+len("/documents/"):]
	}

	want := strings.Split(strings.Trim(pattern, "/"), "/")
	got := strings.Split(strings.Trim(name, "/"), "/")
	if len(want) != len(got) {
		return nil, false
	}

	params := make(map[string]string)
	for i, seg := range want {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			if got[i] == "" {
				return nil, false
			}
			params[seg[1:len(seg)-1]] = got[i]
			continue
		}
		if seg != got[i] {
			return nil, false
		}
	}
	return params, true
}
