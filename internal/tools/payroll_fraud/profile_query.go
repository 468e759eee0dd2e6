package payroll_fraud

import (
	"fmt"
	"strings"
)

// attributeHop is one outgoing relationship from an Employee to an attribute node in the synced graph.
type attributeHop struct {
	RelType  string
	Label    string
	Key      string
	Category string
	Props    []string
}

// employeeHops mirrors the relationships written by the export package.
var employeeHops = []attributeHop{
	{RelType: "DEPOSITS_TO", Label: "BankAccount", Key: "accountNumber", Category: "banking", Props: []string{"bankName"}},
	{RelType: "USES_DEVICE", Label: "Device", Key: "deviceId", Category: "devices"},
	{RelType: "WORKS_AT", Label: "Department", Key: "name", Category: "employment", Props: []string{"ministry"}},
}

// matchBuilder accumulates OPTIONAL MATCH clauses and hands out unique variable names.
type matchBuilder struct {
	clauses []string
	next    int
}

func (b *matchBuilder) variable(prefix string) string {
	v := fmt.Sprintf("%s%d", prefix, b.next)
	b.next++
	return v
}

// hop adds OPTIONAL MATCH (src)-[:REL]->(attrN:Label) and returns attrN.
func (b *matchBuilder) hop(src string, h attributeHop) string {
	v := b.variable("attr")
	b.clauses = append(b.clauses, fmt.Sprintf("OPTIONAL MATCH (%s)-[:%s]->(%s:%s)", src, h.RelType, v, h.Label))
	return v
}

// shared adds a two-hop match to other employees pointing at the same node and returns the peer variable.
func (b *matchBuilder) shared(src string, h attributeHop) string {
	v := b.variable("peer")
	b.clauses = append(b.clauses, fmt.Sprintf(
		"OPTIONAL MATCH (%s)-[:%s]->(:%s)<-[:%s]-(%s:Employee)\nWHERE %s <> %s",
		src, h.RelType, h.Label, h.RelType, v, v, src))
	return v
}

func (b *matchBuilder) String() string {
	return strings.Join(b.clauses, "\n")
}

// projection renders a map projection such as attr0{.accountNumber, .bankName}.
// Using projections inside collect() avoids implicit grouping keys on node properties.
func projection(v, key string, props []string) string {
	if len(props) == 0 && key == "" {
		return v + "{.*}"
	}
	fields := make([]string, 0, len(props)+1)
	if key != "" {
		fields = append(fields, "."+key)
	}
	for _, p := range props {
		fields = append(fields, "."+p)
	}
	return fmt.Sprintf("%s{%s}", v, strings.Join(fields, ", "))
}

// buildEmployeeProfileQuery returns the profile query for one employee: base properties, every attribute
// hop grouped by category and, when withPeers is set, the co-depositors and device co-users.
func buildEmployeeProfileQuery(withPeers bool) string {
	var q strings.Builder
	q.WriteString("MATCH (e:Employee {employeeId: $employeeId})\n")

	b := &matchBuilder{}
	type collected struct {
		category, key, alias, expr string
	}
	var cols []collected
	for _, h := range employeeHops {
		v := b.hop("e", h)
		cols = append(cols, collected{
			category: h.Category,
			key:      strings.ToLower(h.Label) + "s",
			alias:    h.Category + "_" + strings.ToLower(h.Label) + "s",
			expr:     projection(v, h.Key, h.Props),
		})
	}
	if withPeers {
		for _, h := range employeeHops[:2] {
			v := b.shared("e", h)
			key := "co_depositors"
			if h.Label == "Device" {
				key = "device_co_users"
			}
			cols = append(cols, collected{
				category: "peers",
				key:      key,
				alias:    "peers_" + key,
				expr:     projection(v, "employeeId", []string{"name", "fraudType"}),
			})
		}
	}

	q.WriteString(b.String())
	q.WriteString("\nWITH e")
	for _, c := range cols {
		fmt.Fprintf(&q, ",\n     collect(DISTINCT %s) AS %s", c.expr, c.alias)
	}

	q.WriteString("\nRETURN {\n  base_details: properties(e)")
	var order []string
	byCategory := make(map[string][]collected)
	for _, c := range cols {
		if _, seen := byCategory[c.category]; !seen {
			order = append(order, c.category)
		}
		byCategory[c.category] = append(byCategory[c.category], c)
	}
	for _, cat := range order {
		fmt.Fprintf(&q, ",\n  %s: {", cat)
		for i, c := range byCategory[cat] {
			if i > 0 {
				q.WriteString(",")
			}
			fmt.Fprintf(&q, "\n    %s: %s", c.key, c.alias)
		}
		q.WriteString("\n  }")
	}
	q.WriteString("\n} AS employeeProfile")
	return q.String()
}
