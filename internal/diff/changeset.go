package diff

// TicketField identifies one mutable ticket column. The set is closed:
// immutable fields (submitter, project, timestamps) have no TicketField value
// and therefore can never enter a ChangeSet or reach a SQL statement.
type TicketField string

const (
	FieldTitle       TicketField = "title"
	FieldDescription TicketField = "description"
	FieldStatus      TicketField = "status"
	FieldType        TicketField = "type"
	FieldPriority    TicketField = "priority"
	FieldDeveloperID TicketField = "developer_id"
)

// MutableFields returns every diffable field in canonical order. The order is
// also the iteration order of a ChangeSet, which fixes the insertion order of
// audit rows produced by one mutation.
func MutableFields() []TicketField {
	return []TicketField{
		FieldTitle,
		FieldDescription,
		FieldStatus,
		FieldType,
		FieldPriority,
		FieldDeveloperID,
	}
}

// FieldChange captures one field's transition. From and To are the audit-trail
// text renderings; Value is the new value in its storage type for binding as a
// query parameter.
type FieldChange struct {
	Field TicketField
	From  string
	To    string
	Value any
}

// ChangeSet is the ordered set of fields whose proposed value differs from the
// persisted one. It is transient: computed, applied, recorded, discarded.
type ChangeSet struct {
	changes []FieldChange
}

// Empty reports whether the proposed state matched the persisted state, i.e.
// the mutation is a no-op.
func (cs ChangeSet) Empty() bool {
	return len(cs.changes) == 0
}

// Len returns the number of changed fields.
func (cs ChangeSet) Len() int {
	return len(cs.changes)
}

// Changes returns the field changes in canonical order.
func (cs ChangeSet) Changes() []FieldChange {
	out := make([]FieldChange, len(cs.changes))
	copy(out, cs.changes)
	return out
}

// Change returns the transition for a field, if the field changed.
func (cs ChangeSet) Change(field TicketField) (FieldChange, bool) {
	for _, ch := range cs.changes {
		if ch.Field == field {
			return ch, true
		}
	}
	return FieldChange{}, false
}

// Fields returns the names of the changed fields in canonical order.
func (cs ChangeSet) Fields() []TicketField {
	fields := make([]TicketField, len(cs.changes))
	for i, ch := range cs.changes {
		fields[i] = ch.Field
	}
	return fields
}

func (cs *ChangeSet) add(field TicketField, from, to string, value any) {
	cs.changes = append(cs.changes, FieldChange{Field: field, From: from, To: to, Value: value})
}
