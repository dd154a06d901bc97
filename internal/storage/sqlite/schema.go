package sqlite

// Schema creates the contact and relationship tables. Statements are
// idempotent so the schema can be applied on every open.
const Schema = `
CREATE TABLE IF NOT EXISTS contacts (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	gender      TEXT NOT NULL DEFAULT '',
	company     TEXT NOT NULL DEFAULT '',
	job_title   TEXT NOT NULL DEFAULT '',
	email       TEXT NOT NULL DEFAULT '',
	phone       TEXT NOT NULL DEFAULT '',
	notes       TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contacts_company ON contacts(company);
CREATE INDEX IF NOT EXISTS idx_contacts_name ON contacts(name);

CREATE TABLE IF NOT EXISTS relationship_edges (
	id                 TEXT PRIMARY KEY,
	pair_id            TEXT NOT NULL,
	pair_key           TEXT NOT NULL,
	contact_a_id       TEXT NOT NULL,
	contact_b_id       TEXT NOT NULL,
	type               TEXT NOT NULL,
	category           TEXT NOT NULL,
	strength           INTEGER NOT NULL DEFAULT 0,
	status             TEXT NOT NULL,
	start_date         TIMESTAMP,
	end_date           TIMESTAMP,
	is_mutual          INTEGER NOT NULL DEFAULT 0,
	notes              TEXT NOT NULL DEFAULT '',
	context            TEXT NOT NULL DEFAULT '',
	is_gender_resolved INTEGER NOT NULL DEFAULT 0,
	original_type      TEXT NOT NULL DEFAULT '',
	created_at         TIMESTAMP NOT NULL,
	updated_at         TIMESTAMP NOT NULL
);

-- One row per direction: the pair key is shared, the source contact is not.
CREATE UNIQUE INDEX IF NOT EXISTS idx_edges_pair_direction
	ON relationship_edges(pair_key, contact_a_id);

CREATE INDEX IF NOT EXISTS idx_edges_pair_key ON relationship_edges(pair_key);
CREATE INDEX IF NOT EXISTS idx_edges_contact_a ON relationship_edges(contact_a_id);
CREATE INDEX IF NOT EXISTS idx_edges_contact_b ON relationship_edges(contact_b_id);
CREATE INDEX IF NOT EXISTS idx_edges_category ON relationship_edges(category);
`
