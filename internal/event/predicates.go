package event

// Predicates over a task's event slice. All of them are nil-safe: a missing
// or malformed nested path counts as "no match", never an error, so one bad
// event cannot abort evaluation of the rest of the batch.

// HasChangeEvent reports whether any event has action "changed".
func HasChangeEvent(events []Event) bool {
	for _, ev := range events {
		if ev.Action == ActionChanged {
			return true
		}
	}
	return false
}

// HasAddEvent reports whether any event has action "added".
func HasAddEvent(events []Event) bool {
	for _, ev := range events {
		if ev.Action == ActionAdded {
			return true
		}
	}
	return false
}

// HasEnumOptionChange reports whether any "changed" event carries a new
// enum_value whose gid is one of the known option ids for the monitored
// status field.
func HasEnumOptionChange(events []Event, knownOptionIDs map[string]string) bool {
	for _, ev := range events {
		if ev.Action != ActionChanged || ev.Change == nil {
			continue
		}
		nv := ev.Change.NewValue
		if nv == nil || nv.EnumValue == nil || nv.EnumValue.GID == "" {
			continue
		}
		if _, ok := knownOptionIDs[nv.EnumValue.GID]; ok {
			return true
		}
	}
	return false
}

// AssigneeChanges extracts the change payloads of every "changed" event on
// the assignee field, in arrival order. A cleared assignee is included with a
// nil NewValue so callers can skip it explicitly.
func AssigneeChanges(events []Event) []Change {
	var changes []Change
	for _, ev := range events {
		if ev.Action != ActionChanged || ev.Change == nil {
			continue
		}
		if ev.Change.Field != "assignee" {
			continue
		}
		changes = append(changes, *ev.Change)
	}
	return changes
}
