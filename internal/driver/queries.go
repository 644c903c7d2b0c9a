package driver

// Staging database: two disjoint populations with vector indexes. Schema
// commands cannot take parameters, so the vector index statements are format
// strings taking the configured dimensionality.
const (
	CreateSamplePKConstraintQuery = `
		CREATE CONSTRAINT sample_pk IF NOT EXISTS
		FOR (s:Sample) REQUIRE s.pk IS UNIQUE
	`

	CreateReferencePKConstraintQuery = `
		CREATE CONSTRAINT reference_pk IF NOT EXISTS
		FOR (r:Reference) REQUIRE r.pk IS UNIQUE
	`

	CreateSampleVectorIndexQuery = `
		CREATE VECTOR INDEX sample_index IF NOT EXISTS
		FOR (s:Sample) ON (s.embedding)
		OPTIONS {indexConfig: {
			` + "`vector.dimensions`" + `: %d,
			` + "`vector.similarity_function`" + `: 'cosine'
		}}
	`

	CreateReferenceVectorIndexQuery = `
		CREATE VECTOR INDEX reference_index IF NOT EXISTS
		FOR (r:Reference) ON (r.embedding)
		OPTIONS {indexConfig: {
			` + "`vector.dimensions`" + `: %d,
			` + "`vector.similarity_function`" + `: 'cosine'
		}}
	`

	ClearDatabaseQuery = `MATCH (n) DETACH DELETE n`

	StageSamplesQuery = `
		UNWIND $rows AS row
		MERGE (s:Sample {pk: row.pk})
		SET s.name = row.name,
			s.category = row.category,
			s.year = row.year,
			s.embedding = row.embedding
		RETURN count(s) AS merged
	`

	StageReferencesQuery = `
		UNWIND $rows AS row
		MERGE (r:Reference {pk: row.pk})
		SET r.id = row.id,
			r.knownName = row.knownName,
			r.fullName = row.fullName,
			r.category = row.category,
			r.year = row.year,
			r.embedding = row.embedding
		RETURN count(r) AS merged
	`

	SearchReferencesQuery = `
		CALL db.index.vector.queryNodes('reference_index', $k, $embedding)
		YIELD node, score
		RETURN node.id AS id,
			node.knownName AS knownName,
			node.fullName AS fullName,
			node.category AS category,
			node.year AS year,
			1 - score AS distance
		ORDER BY distance
	`

	SearchReferencePKsQuery = `
		CALL db.index.vector.queryNodes('reference_index', $k, $embedding)
		YIELD node, score
		RETURN node.pk AS pk, 1 - score AS distance
		ORDER BY distance
	`

	CollectSamplesQuery = `
		MATCH (s:Sample)
		RETURN s.name AS name, s.category AS category, s.year AS year, s.embedding AS embedding
		ORDER BY s.name
	`

	LinkSimilarQuery = `
		UNWIND $rows AS row
		MATCH (s:Sample {pk: row.source_pk})
		MATCH (r:Reference {pk: row.target_pk})
		MERGE (s)-[rel:SIMILAR_TO]->(r)
		SET rel.similarity_score = row.similarity_score
		RETURN count(rel) AS matched_rows, count(DISTINCT rel) AS merged
	`

)

// Graph database: node constraints, batch node/edge merges, verification.
// Edge merges report matched_rows (rows whose endpoints both resolved) next
// to merged (distinct relationships) so callers can count skipped rows.
const (
	CreateScholarIDConstraintQuery = `
		CREATE CONSTRAINT scholar_id IF NOT EXISTS
		FOR (s:Scholar) REQUIRE s.id IS UNIQUE
	`

	CreatePrizeIDConstraintQuery = `
		CREATE CONSTRAINT prize_id IF NOT EXISTS
		FOR (p:Prize) REQUIRE p.id IS UNIQUE
	`

	CreateCityNameConstraintQuery = `
		CREATE CONSTRAINT city_name IF NOT EXISTS
		FOR (c:City) REQUIRE c.name IS UNIQUE
	`

	CreateCountryNameConstraintQuery = `
		CREATE CONSTRAINT country_name IF NOT EXISTS
		FOR (c:Country) REQUIRE c.name IS UNIQUE
	`

	CreateContinentNameConstraintQuery = `
		CREATE CONSTRAINT continent_name IF NOT EXISTS
		FOR (c:Continent) REQUIRE c.name IS UNIQUE
	`

	CreateInstitutionNameConstraintQuery = `
		CREATE CONSTRAINT institution_name IF NOT EXISTS
		FOR (i:Institution) REQUIRE i.name IS UNIQUE
	`

	MergeLaureateNodesQuery = `
		UNWIND $rows AS row
		MERGE (s:Scholar {id: row.id})
		SET s.name = row.name,
			s.fullName = row.fullName,
			s.gender = row.gender,
			s.birthDate = CASE WHEN row.birthDate IS NULL THEN null ELSE date(row.birthDate) END,
			s.deathDate = CASE WHEN row.deathDate IS NULL THEN null ELSE date(row.deathDate) END,
			s.scholar_type = CASE
				WHEN row.id STARTS WITH 'l' THEN 'laureate'
				WHEN row.id STARTS WITH 's' THEN 'scholar'
				ELSE null
			END
		RETURN count(s) AS merged
	`

	MergeScholarNodesQuery = `
		UNWIND $rows AS row
		MERGE (s:Scholar {id: row.id})
		SET s.name = row.name,
			s.scholar_type = CASE
				WHEN row.id STARTS WITH 'l' THEN 'laureate'
				WHEN row.id STARTS WITH 's' THEN 'scholar'
				ELSE null
			END
		RETURN count(s) AS merged
	`

	MergePrizeNodesQuery = `
		UNWIND $rows AS row
		MERGE (p:Prize {id: row.id})
		SET p.awardYear = row.awardYear,
			p.category = row.category,
			p.dateAwarded = CASE WHEN row.dateAwarded IS NULL THEN null ELSE date(row.dateAwarded) END,
			p.motivation = row.motivation,
			p.prizeAmount = row.prizeAmount,
			p.prizeAmountAdjusted = row.prizeAmountAdjusted
		RETURN count(p) AS merged
	`

	MergeCityNodesQuery = `
		UNWIND $rows AS row
		MERGE (c:City {name: row.name})
		SET c.state = coalesce(row.state, c.state)
		RETURN count(c) AS merged
	`

	MergeCountryNodesQuery = `
		UNWIND $rows AS row
		MERGE (c:Country {name: row.name})
		RETURN count(c) AS merged
	`

	MergeContinentNodesQuery = `
		UNWIND $rows AS row
		MERGE (c:Continent {name: row.name})
		RETURN count(c) AS merged
	`

	MergeInstitutionNodesQuery = `
		UNWIND $rows AS row
		MERGE (i:Institution {name: row.name})
		RETURN count(i) AS merged
	`

	MergeMentoredEdgesQuery = `
		UNWIND $rows AS row
		MATCH (a:Scholar {id: row.parent_id})
		MATCH (b:Scholar {id: row.child_id})
		MERGE (a)-[r:MENTORED]->(b)
		RETURN count(r) AS matched_rows, count(DISTINCT r) AS merged
	`

	MergeBornInEdgesQuery = `
		UNWIND $rows AS row
		MATCH (s:Scholar {id: row.id})
		MATCH (c:City {name: row.city})
		MERGE (s)-[r:BORN_IN]->(c)
		RETURN count(r) AS matched_rows, count(DISTINCT r) AS merged
	`

	MergeDiedInEdgesQuery = `
		UNWIND $rows AS row
		MATCH (s:Scholar {id: row.id})
		MATCH (c:City {name: row.city})
		MERGE (s)-[r:DIED_IN]->(c)
		RETURN count(r) AS matched_rows, count(DISTINCT r) AS merged
	`

	MergeCityInEdgesQuery = `
		UNWIND $rows AS row
		MATCH (c:City {name: row.city})
		MATCH (co:Country {name: row.country})
		MERGE (c)-[r:IS_CITY_IN]->(co)
		RETURN count(r) AS matched_rows, count(DISTINCT r) AS merged
	`

	MergeCountryInEdgesQuery = `
		UNWIND $rows AS row
		MATCH (co:Country {name: row.country})
		MATCH (con:Continent {name: row.continent})
		MERGE (co)-[r:IS_COUNTRY_IN]->(con)
		RETURN count(r) AS matched_rows, count(DISTINCT r) AS merged
	`

	MergeWonEdgesQuery = `
		UNWIND $rows AS row
		MATCH (s:Scholar {id: row.laureate_id})
		MATCH (p:Prize {id: row.prize_id})
		MERGE (s)-[r:WON]->(p)
		SET r.portion = row.portion
		RETURN count(r) AS matched_rows, count(DISTINCT r) AS merged
	`

	MergeAffiliatedWithEdgesQuery = `
		UNWIND $rows AS row
		MATCH (s:Scholar {id: row.laureate_id})
		MATCH (i:Institution {name: row.institution})
		MERGE (s)-[r:AFFILIATED_WITH]->(i)
		RETURN count(r) AS matched_rows, count(DISTINCT r) AS merged
	`

	LoadMentoredEdgesQuery = `
		MATCH (a:Scholar)-[:MENTORED]->(b:Scholar)
		RETURN a.id AS source, b.id AS target
	`

	SetLineageQuery = `
		UNWIND $rows AS row
		MATCH (s:Scholar {id: row.id})
		SET s.lineage = row.lineage
		RETURN count(s) AS updated
	`

	CountNodesByLabelQuery = `
		MATCH (n)
		UNWIND labels(n) AS label
		RETURN label, count(*) AS count
		ORDER BY label
	`

	CountEdgesByTypeQuery = `
		MATCH ()-[r]->()
		RETURN type(r) AS type, count(r) AS count
		ORDER BY type
	`

	CountLineagesQuery = `
		MATCH (s:Scholar)
		WHERE s.lineage IS NOT NULL
		RETURN count(DISTINCT s.lineage) AS count
	`

	MentoredInDegreeQuery = `
		MATCH (s:Scholar)<-[r:MENTORED]-(:Scholar)
		WHERE s.fullName CONTAINS $fragment OR s.name CONTAINS $fragment
		RETURN s.name AS name, count(r) AS mentors
		ORDER BY name
	`

	GetScholarQuery = `
		MATCH (s:Scholar {id: $id})
		OPTIONAL MATCH (s)-[:WON]->(p:Prize)
		OPTIONAL MATCH (s)<-[:MENTORED]-(mentor:Scholar)
		OPTIONAL MATCH (s)-[:MENTORED]->(mentee:Scholar)
		OPTIONAL MATCH (s)-[:AFFILIATED_WITH]->(i:Institution)
		OPTIONAL MATCH (s)-[:BORN_IN]->(c:City)
		RETURN s.id AS id,
			s.name AS name,
			s.fullName AS fullName,
			s.scholar_type AS scholar_type,
			toString(s.birthDate) AS birthDate,
			toString(s.deathDate) AS deathDate,
			c.name AS birthPlace,
			collect(DISTINCT p.id) AS prizes,
			collect(DISTINCT mentor.name) AS mentors,
			collect(DISTINCT mentee.name) AS mentees,
			collect(DISTINCT i.name) AS institutions
	`

	ListLineageMembersQuery = `
		MATCH (s:Scholar)
		WHERE s.lineage = $lineage
		RETURN s.id AS id, s.name AS name
		ORDER BY s.name
	`
)
