package cqlclient

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/scylladb/gocqlx/v2/qb"

	"github.com/hkhamm/cqlclient/types"
)

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,47}$`)
	classPattern      = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)
	datacenterPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.\-]*$`)
)

// statement is a validated CQL statement with its bind values.
type statement struct {
	kind types.StatementKind
	cql  string
	args []any
}

// reservedWords are the CQL keywords that cannot appear as bare identifiers.
var reservedWords = map[string]bool{
	"add": true, "allow": true, "alter": true, "and": true, "apply": true,
	"asc": true, "authorize": true, "batch": true, "begin": true, "by": true,
	"columnfamily": true, "create": true, "default": true, "delete": true,
	"desc": true, "describe": true, "drop": true, "entries": true,
	"execute": true, "from": true, "full": true, "grant": true, "if": true,
	"in": true, "index": true, "infinity": true, "insert": true, "into": true,
	"is": true, "keyspace": true, "limit": true, "materialized": true,
	"mbean": true, "mbeans": true, "modify": true, "nan": true,
	"norecursive": true, "not": true, "null": true, "of": true, "on": true,
	"or": true, "order": true, "primary": true, "rename": true,
	"replace": true, "revoke": true, "schema": true, "select": true,
	"set": true, "table": true, "to": true, "token": true, "truncate": true,
	"unlogged": true, "unset": true, "update": true, "use": true,
	"using": true, "view": true, "where": true, "with": true,
}

// QuoteIdentifier validates a keyspace, table or column name and returns
// it in CQL form.
//
// Names must match [A-Za-z][A-Za-z0-9_]{0,47}. They are folded to lower
// case the way Cassandra folds unquoted names, so "Songs" and "songs" name
// the same table. Reserved words such as "order" are double-quoted.
//
// Parameters:
//   - name: The unqualified identifier
//
// Returns:
//   - string: The identifier as it appears in statement text
//   - error: ErrInvalidIdentifier if the name is rejected
func QuoteIdentifier(name string) (string, error) {
	if !identifierPattern.MatchString(name) {
		return "", fmt.Errorf("%w: %q", types.ErrInvalidIdentifier, name)
	}

	name = strings.ToLower(name)
	if reservedWords[name] {
		return `"` + name + `"`, nil
	}

	return name, nil
}

// QualifiedName validates a table name of the form "table" or
// "keyspace.table" and returns it in CQL form.
func QualifiedName(name string) (string, error) {
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return "", fmt.Errorf("%w: %q", types.ErrInvalidIdentifier, name)
	}

	for i, p := range parts {
		q, err := QuoteIdentifier(p)
		if err != nil {
			return "", err
		}
		parts[i] = q
	}

	return strings.Join(parts, "."), nil
}

// Replication describes a keyspace replication strategy.
type Replication struct {
	// Class is the strategy class, e.g. "SimpleStrategy" or
	// "org.apache.cassandra.locator.NetworkTopologyStrategy". Surrounding
	// single quotes are tolerated.
	Class string

	// Factor is the replication factor. Required for every strategy except
	// NetworkTopologyStrategy with DatacenterFactors set.
	Factor int

	// DatacenterFactors maps datacenter names to replica counts. Only valid
	// with NetworkTopologyStrategy.
	DatacenterFactors map[string]int
}

// SimpleStrategy returns a SimpleStrategy replication with the given factor.
func SimpleStrategy(factor int) Replication {
	return Replication{Class: "SimpleStrategy", Factor: factor}
}

// NetworkTopologyStrategy returns a NetworkTopologyStrategy replication with
// per-datacenter replica counts.
func NetworkTopologyStrategy(factors map[string]int) Replication {
	return Replication{Class: "NetworkTopologyStrategy", DatacenterFactors: factors}
}

// render returns the replication map literal.
//
// Replication options are part of the DDL grammar and cannot be bound, so
// every component is validated before it is written into the statement.
func (r Replication) render() (string, error) {
	class := strings.TrimSpace(r.Class)
	if len(class) >= 2 && class[0] == '\'' && class[len(class)-1] == '\'' {
		class = class[1 : len(class)-1]
	}
	if !classPattern.MatchString(class) {
		return "", fmt.Errorf("%w: replication class %q", types.ErrInvalidStatement, r.Class)
	}

	isNTS := class == "NetworkTopologyStrategy" || strings.HasSuffix(class, ".NetworkTopologyStrategy")

	var b strings.Builder
	b.WriteString("{'class': '")
	b.WriteString(class)
	b.WriteString("'")

	switch {
	case len(r.DatacenterFactors) > 0:
		if !isNTS {
			return "", fmt.Errorf("%w: datacenter factors require NetworkTopologyStrategy, got %s",
				types.ErrInvalidStatement, class)
		}
		dcs := make([]string, 0, len(r.DatacenterFactors))
		for dc := range r.DatacenterFactors {
			dcs = append(dcs, dc)
		}
		sort.Strings(dcs)
		for _, dc := range dcs {
			n := r.DatacenterFactors[dc]
			if !datacenterPattern.MatchString(dc) {
				return "", fmt.Errorf("%w: datacenter %q", types.ErrInvalidStatement, dc)
			}
			if n < 1 {
				return "", fmt.Errorf("%w: datacenter %s replication factor %d", types.ErrInvalidStatement, dc, n)
			}
			b.WriteString(", '")
			b.WriteString(dc)
			b.WriteString("': ")
			b.WriteString(strconv.Itoa(n))
		}
	case r.Factor >= 1:
		b.WriteString(", 'replication_factor': ")
		b.WriteString(strconv.Itoa(r.Factor))
	default:
		return "", fmt.Errorf("%w: replication factor must be at least 1, got %d", types.ErrInvalidStatement, r.Factor)
	}
	b.WriteString("}")

	return b.String(), nil
}

// ColumnDef declares one table column.
type ColumnDef struct {
	Name string
	Type string

	// PrimaryKey marks the column as the sole primary key. It is shorthand
	// for TableSchema.PartitionKey = []string{Name}.
	PrimaryKey bool
}

// TableSchema describes the columns and primary key of a table.
type TableSchema struct {
	Columns       []ColumnDef
	PartitionKey  []string
	ClusteringKey []string
}

// render returns the parenthesised column list of a CREATE TABLE statement.
func (s TableSchema) render() (string, error) {
	if len(s.Columns) == 0 {
		return "", fmt.Errorf("%w: table has no columns", types.ErrInvalidStatement)
	}

	declared := make(map[string]bool, len(s.Columns))
	var inline string
	defs := make([]string, 0, len(s.Columns)+1)

	for _, col := range s.Columns {
		name, err := QuoteIdentifier(col.Name)
		if err != nil {
			return "", err
		}
		if declared[name] {
			return "", fmt.Errorf("%w: column %s declared twice", types.ErrInvalidStatement, col.Name)
		}
		declared[name] = true

		typ, err := NormalizeType(col.Type)
		if err != nil {
			return "", err
		}

		def := name + " " + typ
		if col.PrimaryKey {
			if inline != "" {
				return "", fmt.Errorf("%w: more than one column marked PRIMARY KEY", types.ErrInvalidStatement)
			}
			inline = col.Name
			def += " PRIMARY KEY"
		}
		defs = append(defs, def)
	}

	switch {
	case inline != "" && (len(s.PartitionKey) > 0 || len(s.ClusteringKey) > 0):
		return "", fmt.Errorf("%w: column %s marked PRIMARY KEY alongside a key clause", types.ErrInvalidStatement, inline)
	case inline == "" && len(s.PartitionKey) == 0:
		return "", fmt.Errorf("%w: table has no primary key", types.ErrInvalidStatement)
	case inline == "":
		clause, err := primaryKeyClause(s.PartitionKey, s.ClusteringKey, declared)
		if err != nil {
			return "", err
		}
		defs = append(defs, clause)
	}

	return "(" + strings.Join(defs, ", ") + ")", nil
}

func primaryKeyClause(partition, clustering []string, declared map[string]bool) (string, error) {
	quote := func(names []string) ([]string, error) {
		out := make([]string, len(names))
		for i, n := range names {
			q, err := QuoteIdentifier(n)
			if err != nil {
				return nil, err
			}
			if !declared[q] {
				return nil, fmt.Errorf("%w: key column %s is not declared", types.ErrInvalidStatement, n)
			}
			out[i] = q
		}

		return out, nil
	}

	pk, err := quote(partition)
	if err != nil {
		return "", err
	}
	ck, err := quote(clustering)
	if err != nil {
		return "", err
	}

	head := pk[0]
	if len(pk) > 1 {
		head = "(" + strings.Join(pk, ", ") + ")"
	}

	return "PRIMARY KEY (" + strings.Join(append([]string{head}, ck...), ", ") + ")", nil
}

// ParseColumnDefinitions parses a comma-separated column definition text
// such as "id uuid PRIMARY KEY, title text, tags set<text>" into a schema.
//
// A trailing "PRIMARY KEY ((a, b), c)" clause is also understood. Column
// types are validated when the schema is used.
//
// Parameters:
//   - text: Column definitions as they appear inside CREATE TABLE (...)
//
// Returns:
//   - TableSchema: The parsed schema
//   - error: ErrInvalidStatement if the text cannot be parsed
func ParseColumnDefinitions(text string) (TableSchema, error) {
	var schema TableSchema

	for _, frag := range splitTopLevel(text, ',') {
		frag = strings.Join(strings.Fields(frag), " ")
		if frag == "" {
			continue
		}

		upper := strings.ToUpper(frag)
		if strings.HasPrefix(upper, "PRIMARY KEY") {
			if len(schema.PartitionKey) > 0 {
				return TableSchema{}, fmt.Errorf("%w: duplicate PRIMARY KEY clause", types.ErrInvalidStatement)
			}
			pk, ck, err := parseKeyClause(strings.TrimSpace(frag[len("PRIMARY KEY"):]))
			if err != nil {
				return TableSchema{}, err
			}
			schema.PartitionKey, schema.ClusteringKey = pk, ck

			continue
		}

		name, typ, ok := strings.Cut(frag, " ")
		if !ok {
			return TableSchema{}, fmt.Errorf("%w: column %q has no type", types.ErrInvalidStatement, frag)
		}

		col := ColumnDef{Name: name, Type: typ}
		if strings.HasSuffix(strings.ToUpper(typ), " PRIMARY KEY") {
			col.Type = strings.TrimSpace(typ[:len(typ)-len(" PRIMARY KEY")])
			col.PrimaryKey = true
		}
		schema.Columns = append(schema.Columns, col)
	}

	if len(schema.Columns) == 0 {
		return TableSchema{}, fmt.Errorf("%w: no column definitions", types.ErrInvalidStatement)
	}

	return schema, nil
}

// parseKeyClause parses "(a, b)" or "((a, b), c)".
func parseKeyClause(s string) (partition, clustering []string, err error) {
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return nil, nil, fmt.Errorf("%w: malformed PRIMARY KEY clause %q", types.ErrInvalidStatement, s)
	}

	parts := splitTopLevel(s[1:len(s)-1], ',')
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	if len(parts) == 0 || parts[0] == "" {
		return nil, nil, fmt.Errorf("%w: empty PRIMARY KEY clause", types.ErrInvalidStatement)
	}

	first := parts[0]
	if strings.HasPrefix(first, "(") && strings.HasSuffix(first, ")") {
		for _, p := range strings.Split(first[1:len(first)-1], ",") {
			partition = append(partition, strings.TrimSpace(p))
		}
	} else {
		partition = []string{first}
	}

	return partition, parts[1:], nil
}

// splitTopLevel splits s on sep, ignoring separators nested in <> or ().
func splitTopLevel(s string, sep rune) []string {
	var (
		out   []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '<', '(':
			depth++
		case '>', ')':
			depth--
		case sep:
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}

	return append(out, s[start:])
}

var nativeTypes = []string{
	"ascii", "bigint", "blob", "boolean", "counter", "date", "decimal",
	"double", "duration", "float", "inet", "int", "smallint", "text",
	"time", "timestamp", "timeuuid", "tinyint", "uuid", "varchar", "varint",
}

// NormalizeType validates a CQL column type and returns its canonical
// spelling, e.g. "MAP<Text,INT>" becomes "map<text, int>".
//
// Native types, list, set, map, tuple and frozen are accepted. A
// user-defined type name is accepted only inside frozen<...>.
//
// Parameters:
//   - typ: The column type text
//
// Returns:
//   - string: The canonical type
//   - error: ErrInvalidType if the type is rejected
func NormalizeType(typ string) (string, error) {
	p := &typeParser{src: typ}
	out, err := p.parse(false)
	if err == nil {
		p.skipSpace()
		if p.pos != len(p.src) {
			err = errors.New("unexpected trailing text")
		}
	}
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", types.ErrInvalidType, typ, err)
	}

	return out, nil
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *typeParser) word() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c != '_' && !('a' <= c && c <= 'z') && !('A' <= c && c <= 'Z') && !('0' <= c && c <= '9') {
			break
		}
		p.pos++
	}

	return p.src[start:p.pos]
}

func (p *typeParser) expect(c byte) error {
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != c {
		return fmt.Errorf("expected %q at offset %d", c, p.pos)
	}
	p.pos++

	return nil
}

func (p *typeParser) peek(c byte) bool {
	p.skipSpace()

	return p.pos < len(p.src) && p.src[p.pos] == c
}

func (p *typeParser) parse(frozen bool) (string, error) {
	raw := p.word()
	if raw == "" {
		return "", fmt.Errorf("expected type name at offset %d", p.pos)
	}
	name := strings.ToLower(raw)

	if slices.Contains(nativeTypes, name) {
		return name, nil
	}

	var arity int
	switch name {
	case "list", "set", "frozen":
		arity = 1
	case "map":
		arity = 2
	case "tuple":
		arity = -1
	default:
		if frozen {
			return QuoteIdentifier(raw)
		}

		return "", fmt.Errorf("unknown type %s", raw)
	}

	if err := p.expect('<'); err != nil {
		return "", err
	}

	var args []string
	for {
		arg, err := p.parse(frozen || name == "frozen")
		if err != nil {
			return "", err
		}
		args = append(args, arg)
		if !p.peek(',') {
			break
		}
		p.pos++
	}

	if err := p.expect('>'); err != nil {
		return "", err
	}
	if arity > 0 && len(args) != arity {
		return "", fmt.Errorf("%s takes %d type arguments, got %d", name, arity, len(args))
	}

	return name + "<" + strings.Join(args, ", ") + ">", nil
}

// Operator is a WHERE clause comparison operator.
type Operator string

// Supported operators.
const (
	OpEq  Operator = "="
	OpLt  Operator = "<"
	OpLte Operator = "<="
	OpGt  Operator = ">"
	OpGte Operator = ">="
	OpIn  Operator = "IN"
)

func (op Operator) valid() bool {
	switch op {
	case OpEq, OpLt, OpLte, OpGt, OpGte, OpIn:
		return true
	}

	return false
}

// Predicate is one WHERE condition. The value is always bound, never
// written into the statement text.
type Predicate struct {
	Column string
	Op     Operator
	Value  any
}

// Eq returns the predicate column = value.
func Eq(column string, value any) Predicate {
	return Predicate{Column: column, Op: OpEq, Value: value}
}

// In returns the predicate column IN values.
func In(column string, values ...any) Predicate {
	return Predicate{Column: column, Op: OpIn, Value: values}
}

// Assignment is one SET clause entry of an UPDATE.
type Assignment struct {
	Column string
	Value  any
}

// Set returns the assignment column = value.
func Set(column string, value any) Assignment {
	return Assignment{Column: column, Value: value}
}

// cmp maps the operator onto its qb comparator over column.
func (op Operator) cmp(column string) qb.Cmp {
	switch op {
	case OpLt:
		return qb.Lt(column)
	case OpLte:
		return qb.LtOrEq(column)
	case OpGt:
		return qb.Gt(column)
	case OpGte:
		return qb.GtOrEq(column)
	case OpIn:
		return qb.In(column)
	}

	return qb.Eq(column)
}

func whereClause(where []Predicate) ([]qb.Cmp, []any, error) {
	cmps := make([]qb.Cmp, len(where))
	args := make([]any, len(where))
	for i, p := range where {
		col, err := QuoteIdentifier(p.Column)
		if err != nil {
			return nil, nil, err
		}
		if !p.Op.valid() {
			return nil, nil, fmt.Errorf("%w: unsupported operator %q", types.ErrInvalidStatement, p.Op)
		}
		cmps[i] = p.Op.cmp(col)
		args[i] = p.Value
	}

	return cmps, args, nil
}

// terminate turns qb output, which ends in a blank, into a statement.
func terminate(stmt string) string {
	return strings.TrimSpace(stmt) + ";"
}

func buildCreateKeyspace(name string, repl Replication) (statement, error) {
	ks, err := QuoteIdentifier(name)
	if err != nil {
		return statement{}, err
	}
	r, err := repl.render()
	if err != nil {
		return statement{}, err
	}

	return statement{
		kind: types.KindCreateKeyspace,
		cql:  "CREATE KEYSPACE IF NOT EXISTS " + ks + " WITH replication = " + r + ";",
	}, nil
}

func buildCreateTable(table string, schema TableSchema) (statement, error) {
	t, err := QualifiedName(table)
	if err != nil {
		return statement{}, err
	}
	cols, err := schema.render()
	if err != nil {
		return statement{}, err
	}

	return statement{
		kind: types.KindCreateTable,
		cql:  "CREATE TABLE IF NOT EXISTS " + t + " " + cols + ";",
	}, nil
}

func buildInsert(table string, columns []string, values []any) (statement, error) {
	t, err := QualifiedName(table)
	if err != nil {
		return statement{}, err
	}
	if len(columns) == 0 {
		return statement{}, fmt.Errorf("%w: insert without columns", types.ErrInvalidStatement)
	}
	if len(columns) != len(values) {
		return statement{}, fmt.Errorf("%w: %d columns but %d values", types.ErrInvalidStatement, len(columns), len(values))
	}

	cols := make([]string, len(columns))
	for i, c := range columns {
		if cols[i], err = QuoteIdentifier(c); err != nil {
			return statement{}, err
		}
	}
	stmt, _ := qb.Insert(t).Columns(cols...).ToCql()

	return statement{
		kind: types.KindInsert,
		cql:  terminate(stmt),
		args: values,
	}, nil
}

func buildSelect(table string, where []Predicate) (statement, error) {
	t, err := QualifiedName(table)
	if err != nil {
		return statement{}, err
	}

	cmps, args, err := whereClause(where)
	if err != nil {
		return statement{}, err
	}
	stmt, _ := qb.Select(t).Where(cmps...).ToCql()
	if len(args) == 0 {
		args = nil
	}

	return statement{kind: types.KindSelect, cql: terminate(stmt), args: args}, nil
}

func buildUpdate(table string, set []Assignment, where []Predicate) (statement, error) {
	t, err := QualifiedName(table)
	if err != nil {
		return statement{}, err
	}
	if len(set) == 0 {
		return statement{}, fmt.Errorf("%w: update without assignments", types.ErrInvalidStatement)
	}
	if len(where) == 0 {
		return statement{}, fmt.Errorf("%w: update without WHERE clause", types.ErrInvalidStatement)
	}

	cols := make([]string, len(set))
	args := make([]any, 0, len(set)+len(where))
	for i, a := range set {
		if cols[i], err = QuoteIdentifier(a.Column); err != nil {
			return statement{}, err
		}
		args = append(args, a.Value)
	}

	cmps, whereArgs, err := whereClause(where)
	if err != nil {
		return statement{}, err
	}
	stmt, _ := qb.Update(t).Set(cols...).Where(cmps...).ToCql()

	return statement{
		kind: types.KindUpdate,
		cql:  terminate(stmt),
		args: append(args, whereArgs...),
	}, nil
}

func buildDropKeyspace(name string) (statement, error) {
	ks, err := QuoteIdentifier(name)
	if err != nil {
		return statement{}, err
	}

	return statement{kind: types.KindDropKeyspace, cql: "DROP KEYSPACE IF EXISTS " + ks + ";"}, nil
}

func buildDropTable(table string) (statement, error) {
	t, err := QualifiedName(table)
	if err != nil {
		return statement{}, err
	}

	return statement{kind: types.KindDropTable, cql: "DROP TABLE IF EXISTS " + t + ";"}, nil
}
