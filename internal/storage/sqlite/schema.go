package sqlite

const schema = `
-- Envelope: the stored record of a raw EDI message. Immutable once
-- inserted; message_type is constrained to the three accepted tags.
CREATE TABLE IF NOT EXISTS edi_messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    message_type TEXT NOT NULL CHECK(message_type IN ('BAPLIE', 'COARRI', 'CODECO')),
    content TEXT NOT NULL,
    container_id TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_edi_messages_container_id ON edi_messages(container_id);

-- BAPLIE: one parent row per BAPLIE envelope, ordered containers as children.
CREATE TABLE IF NOT EXISTS baplie_messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    edi_message_id INTEGER NOT NULL UNIQUE REFERENCES edi_messages(id) ON DELETE CASCADE,
    vessel_name TEXT,
    voyage_number TEXT,
    port_of_loading TEXT,
    port_of_discharge TEXT
);

CREATE TABLE IF NOT EXISTS baplie_containers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    baplie_message_id INTEGER NOT NULL REFERENCES baplie_messages(id) ON DELETE CASCADE,
    seq INTEGER NOT NULL,
    container_id TEXT NOT NULL,
    bay TEXT,
    row TEXT,
    tier TEXT,
    size TEXT,
    container_type TEXT,
    weight TEXT
);

CREATE INDEX IF NOT EXISTS idx_baplie_containers_parent ON baplie_containers(baplie_message_id, seq);

-- COARRI: one parent row per COARRI envelope, ordered movements as children.
CREATE TABLE IF NOT EXISTS coarri_messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    edi_message_id INTEGER NOT NULL UNIQUE REFERENCES edi_messages(id) ON DELETE CASCADE,
    vessel_name TEXT,
    voyage_number TEXT
);

CREATE TABLE IF NOT EXISTS coarri_movements (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    coarri_message_id INTEGER NOT NULL REFERENCES coarri_messages(id) ON DELETE CASCADE,
    seq INTEGER NOT NULL,
    container_id TEXT NOT NULL,
    movement_type TEXT,
    stowage_location TEXT,
    iso_container_type TEXT
);

CREATE INDEX IF NOT EXISTS idx_coarri_movements_parent ON coarri_movements(coarri_message_id, seq);

-- CODECO: one parent row per CODECO envelope, ordered movements as children.
CREATE TABLE IF NOT EXISTS codeco_messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    edi_message_id INTEGER NOT NULL UNIQUE REFERENCES edi_messages(id) ON DELETE CASCADE,
    gate TEXT
);

CREATE TABLE IF NOT EXISTS codeco_movements (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    codeco_message_id INTEGER NOT NULL REFERENCES codeco_messages(id) ON DELETE CASCADE,
    seq INTEGER NOT NULL,
    container_id TEXT NOT NULL,
    movement_type TEXT,
    truck_license_plate TEXT,
    iso_container_type TEXT
);

CREATE INDEX IF NOT EXISTS idx_codeco_movements_parent ON codeco_movements(codeco_message_id, seq);
`
