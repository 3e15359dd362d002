/*
Package template models, parses and statically validates batch documents.

A batch document is a YAML file describing an ordered list of operations against a project
tracker:

	version: 1
	vars:
	  sprint: Sprint 24
	operations:
	  - action: create
	    entity: epic
	    alias: epic
	    fields:
	      name: "$var(sprint) goals"
	  - action: create
	    entity: story
	    fields:
	      epic_id: $ref(epic.id)
	    repeat:
	      - name: Write docs
	      - name: Ship it

Parse turns the YAML into a Template and reports structural problems with their line. Validate
then checks the semantic rules (supported action/entity pairs, required fields and ids, alias and
variable references, known fields) and returns every violation at once.
*/
package template
