// Package config loads and validates ruche configuration.
//
// # Files
//
// The configuration lives in config.toml by default. A path ending in .yaml
// or .yml is decoded as YAML with the same keys:
//
//	[bee]
//	image = "ethersphere/bee:2.3.2"
//	password_path = "/var/lib/bee/password"
//	welcome_msg = "Hello, Swarm!"
//
//	[network]
//	nat_addr = "1.1.1.1"
//	api_port = "17xx"
//	p2p_port = "18xx"
//
//	[chains]
//	eth_rpc = "https://some.rpc"
//	gno_rpc = "https://some.rpc"
//
//	[storage]
//	root_path = "/media"
//	parent_dir_format = "swarm_data_xx"
//	parent_dir_capacity = 4
//
// Optional sections: [registry], [runtime], [api], [neighborhood], [audit]
// and [log].
//
// # Environment
//
// A .env file in the working directory is loaded first. RUCHE_JWT_SECRET,
// RUCHE_MYSQL_DSN and CONSUL_HTTP_ADDR override their config keys.
package config
