// Package diff computes create/update/delete batches for repeated
// sub-entities edited as a whole, such as tenant addresses and contacts.
package diff

// Identifiable exposes the persistent identifier of a repeated item.
// A zero identifier marks the item as not yet persisted.
type Identifiable interface {
	DiffID() int64
}

// Result partitions the edited collection against its stored snapshot.
type Result[T Identifiable] struct {
	Created    []T
	Updated    []T
	DeletedIDs []int64
}

// Empty reports whether the result carries no changes.
func (r Result[T]) Empty() bool {
	return len(r.Created) == 0 && len(r.Updated) == 0 && len(r.DeletedIDs) == 0
}

// Calculate compares the stored snapshot with the submitted collection.
// Items without an identifier are created. Items whose identifier exists
// in the snapshot are updated. Snapshot identifiers absent from the
// submitted collection are deleted. An item carrying an identifier the
// snapshot does not contain is kept in Updated so the persistence layer
// can reject it as missing.
func Calculate[T Identifiable](snapshot, current []T) Result[T] {
	return CalculateFunc(snapshot, current, nil)
}

// CalculateFunc behaves like Calculate but skips updates for items the
// unchanged predicate reports as equal to their snapshot counterpart.
func CalculateFunc[T Identifiable](snapshot, current []T, unchanged func(old, new T) bool) Result[T] {
	existing := make(map[int64]T, len(snapshot))
	for _, item := range snapshot {
		if id := item.DiffID(); id != 0 {
			existing[id] = item
		}
	}

	var result Result[T]
	seen := make(map[int64]struct{}, len(current))
	for _, item := range current {
		id := item.DiffID()
		if id == 0 {
			result.Created = append(result.Created, item)
			continue
		}
		seen[id] = struct{}{}

		old, ok := existing[id]
		if ok && unchanged != nil && unchanged(old, item) {
			continue
		}
		result.Updated = append(result.Updated, item)
	}

	for _, item := range snapshot {
		id := item.DiffID()
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; !ok {
			result.DeletedIDs = append(result.DeletedIDs, id)
		}
	}

	return result
}
