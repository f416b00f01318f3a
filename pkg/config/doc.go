/*
Package config loads the yaml configuration files used by the Lunaricorn
services and applies the environment overrides that win over file values
(db_type, db_host, db_port, db_user, db_password, db_name,
CLUSTER_LEADER_URL).
*/
package config
