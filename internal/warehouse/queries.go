package warehouse

// queryMissingTables returns the requested tables absent from a schema, in
// request order.
// Parameter $1: schema name
// Parameter $2: table names
const queryMissingTables = `
	SELECT t.name
	FROM unnest($2::text[]) WITH ORDINALITY AS t(name, ord)
	WHERE NOT EXISTS (
		SELECT 1
		FROM information_schema.tables it
		WHERE it.table_schema = $1
		  AND it.table_name = t.name
	)
	ORDER BY t.ord
`
