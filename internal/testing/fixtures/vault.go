package fixtures

import "fmt"

// vaultDDL creates the nine vault tables in the schema substituted for %[1]s.
const vaultDDL = `
CREATE SCHEMA IF NOT EXISTS %[1]s;

CREATE TABLE %[1]s.hub_customer (
    customer_hash_key CHAR(32) PRIMARY KEY,
    load_dts          TIMESTAMP NOT NULL,
    record_source     VARCHAR(255) NOT NULL
);

CREATE TABLE %[1]s.hub_product (
    product_hash_key CHAR(32) PRIMARY KEY,
    load_dts         TIMESTAMP NOT NULL,
    record_source    VARCHAR(255) NOT NULL
);

CREATE TABLE %[1]s.hub_location (
    location_hash_key CHAR(32) PRIMARY KEY,
    load_dts          TIMESTAMP NOT NULL,
    record_source     VARCHAR(255) NOT NULL
);

CREATE TABLE %[1]s.hub_order (
    order_hash_key CHAR(32) PRIMARY KEY,
    load_dts       TIMESTAMP NOT NULL,
    record_source  VARCHAR(255) NOT NULL
);

CREATE TABLE %[1]s.link_order (
    order_hash_key    CHAR(32) PRIMARY KEY REFERENCES %[1]s.hub_order,
    customer_hash_key CHAR(32) NOT NULL REFERENCES %[1]s.hub_customer,
    product_hash_key  CHAR(32) NOT NULL REFERENCES %[1]s.hub_product,
    location_hash_key CHAR(32) NOT NULL REFERENCES %[1]s.hub_location,
    load_dts          TIMESTAMP NOT NULL,
    record_source     VARCHAR(255) NOT NULL
);

CREATE TABLE %[1]s.sat_customer (
    customer_hash_key CHAR(32) NOT NULL REFERENCES %[1]s.hub_customer,
    load_dts          TIMESTAMP NOT NULL,
    segment           VARCHAR(255),
    region            VARCHAR(255),
    record_source     VARCHAR(255) NOT NULL,
    PRIMARY KEY (customer_hash_key, load_dts)
);

CREATE TABLE %[1]s.sat_product (
    product_hash_key CHAR(32) NOT NULL REFERENCES %[1]s.hub_product,
    load_dts         TIMESTAMP NOT NULL,
    category         VARCHAR(255),
    sub_category     VARCHAR(255),
    record_source    VARCHAR(255) NOT NULL,
    PRIMARY KEY (product_hash_key, load_dts)
);

CREATE TABLE %[1]s.sat_location (
    location_hash_key CHAR(32) NOT NULL REFERENCES %[1]s.hub_location,
    load_dts          TIMESTAMP NOT NULL,
    city              VARCHAR(255),
    state             VARCHAR(255),
    postal_code       VARCHAR(32),
    region            VARCHAR(255),
    record_source     VARCHAR(255) NOT NULL,
    PRIMARY KEY (location_hash_key, load_dts)
);

CREATE TABLE %[1]s.sat_order (
    order_hash_key CHAR(32) NOT NULL REFERENCES %[1]s.hub_order,
    load_dts       TIMESTAMP NOT NULL,
    ship_mode      VARCHAR(255),
    sales          NUMERIC(12, 4),
    quantity       INTEGER,
    discount       NUMERIC(6, 4),
    profit         NUMERIC(12, 4),
    record_source  VARCHAR(255) NOT NULL,
    PRIMARY KEY (order_hash_key, load_dts)
);
`

// VaultDDL returns the statements creating the hub, link and satellite tables
// in schema. Unquoted schema names are folded to lower case by PostgreSQL.
func VaultDDL(schema string) string {
	return fmt.Sprintf(vaultDDL, schema)
}

// VaultTables lists the tables VaultDDL creates.
var VaultTables = []string{
	"hub_customer", "hub_product", "hub_location", "hub_order",
	"link_order",
	"sat_customer", "sat_product", "sat_location", "sat_order",
}

// DropTableDDL returns a statement dropping table from schema, along with the
// constraints referencing it.
func DropTableDDL(schema, table string) string {
	return fmt.Sprintf("DROP TABLE %s.%s CASCADE", schema, table)
}
