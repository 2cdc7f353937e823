package graph

import (
	"fmt"
	"math"

	"github.com/tidwall/gjson"
)

// ParseJSON reads tasks from a JSON document: either an array of task
// objects or an object with a "tasks" array. Each object carries "id",
// "duration", and optionally "description" and "deps".
func ParseJSON(data []byte) (*TaskGraph, error) {
	if !gjson.ValidBytes(data) {
		return nil, &RecordError{Msg: "malformed JSON document"}
	}

	tasks := gjson.ParseBytes(data)
	if tasks.IsObject() {
		tasks = tasks.Get("tasks")
	}
	if !tasks.IsArray() {
		return nil, &RecordError{Msg: "expected an array of tasks"}
	}

	var records []Record
	var recErr error
	i := 0
	tasks.ForEach(func(_, item gjson.Result) bool {
		rec, err := jsonRecord(item)
		if err != nil {
			recErr = &RecordError{Where: fmt.Sprintf("tasks[%d]", i), Msg: err.Error()}
			return false
		}
		records = append(records, rec)
		i++
		return true
	})
	if recErr != nil {
		return nil, recErr
	}
	return FromRecords(records)
}

func jsonRecord(item gjson.Result) (Record, error) {
	if !item.IsObject() {
		return Record{}, fmt.Errorf("expected an object")
	}

	id := item.Get("id")
	if id.Type != gjson.String || id.String() == "" {
		return Record{}, fmt.Errorf("missing or empty \"id\"")
	}

	dur := item.Get("duration")
	if dur.Type != gjson.Number || dur.Num < 0 || dur.Num > math.MaxUint32 || dur.Num != math.Trunc(dur.Num) {
		return Record{}, fmt.Errorf("task %q: invalid duration %s", id.String(), dur.Raw)
	}

	rec := Record{
		ID:          id.String(),
		Description: item.Get("description").String(),
		Duration:    int(dur.Int()),
	}

	deps := item.Get("deps")
	if !deps.Exists() {
		return rec, nil
	}
	if !deps.IsArray() {
		return Record{}, fmt.Errorf("task %q: \"deps\" must be an array", rec.ID)
	}
	var depErr error
	deps.ForEach(func(_, dep gjson.Result) bool {
		if dep.Type != gjson.String {
			depErr = fmt.Errorf("task %q: dependency %s is not a string", rec.ID, dep.Raw)
			return false
		}
		rec.Deps = append(rec.Deps, dep.String())
		return true
	})
	if depErr != nil {
		return Record{}, depErr
	}
	return rec, nil
}
