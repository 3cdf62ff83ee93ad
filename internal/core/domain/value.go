package domain

// KeyType is the type label returned by the store's TYPE probe.
type KeyType string

const (
	KeyTypeNone   KeyType = "none"
	KeyTypeString KeyType = "string"
	KeyTypeHash   KeyType = "hash"
	KeyTypeList   KeyType = "list"
	KeyTypeSet    KeyType = "set"
	KeyTypeZSet   KeyType = "zset"
)

// Value is the result of a type-probed fetch. The set of implementations
// is closed: ScalarString, FieldList, ItemList, MemberSet and ScoredList.
type Value interface {
	isValue()
}

// ScalarString is a string key; Present is false when the key does not exist.
type ScalarString struct {
	Text    string
	Present bool
}

// Field is one hash field.
type Field struct {
	Name  string
	Value string
}

// FieldList holds hash fields in the order the store returned them.
type FieldList []Field

// ItemList holds list items in index order.
type ItemList []string

// MemberSet holds set members in the order the store returned them.
type MemberSet []string

// ScoredMember is one sorted set element.
type ScoredMember struct {
	Member string
	Score  float64
}

// ScoredList holds sorted set elements in rank order.
type ScoredList []ScoredMember

func (ScalarString) isValue() {}
func (FieldList) isValue()    {}
func (ItemList) isValue()     {}
func (MemberSet) isValue()    {}
func (ScoredList) isValue()   {}

// Str builds a present ScalarString.
func Str(s string) ScalarString {
	return ScalarString{Text: s, Present: true}
}
