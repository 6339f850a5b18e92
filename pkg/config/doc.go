/*
Package config loads patch definitions for patchrc.

	                  +-------------+
	                  |   Config    |
	                  |  (Patches)  |
	                  +------+------+
	                         |
	     +-----------+-------+-----+-----------+
	     |           |             |           |
	+----+----+ +----+----+  +-----+---+ +-----+----+
	|  YAML   | |  JSON   |  |   HCL   | |   TOML   |
	| Parser  | | Parser  |  | Parser  | |  Parser  |
	+---------+ +---------+  +---------+ +----------+

🎯 Purpose:
- Reads a patch definition file in any registered format
- Fills defaults and rejects malformed locators before any file is touched
- Converts each patch into a transaction.Patch

🔄 Flow:
1. Pick a parser by file extension (.patchrc files try YAML then HCL)
2. Decode with unknown fields rejected
3. Load replace_file content relative to the definition
4. Validate and compile every strategy

🤝 Interfaces:
- Parser: Format-specific parsing

📝 HCL definitions can read command line variables through the var object:

	patch "bump-timeout" {
	  file    = "server.go"
	  replace = "timeout := ${var.timeout}"

	  strategy {
	    literal = "timeout := 30"
	  }
	  strategy {
	    anchor {
	      start = "timeout := "
	      end   = "\n"
	    }
	  }
	}

🔍 Example:

	cfg, err := config.Load(ctx, "patches.yaml", config.Vars{"timeout": "60"})
	if err != nil {
		var serr *locate.SpecError
		if errors.As(err, &serr) {
			// the definition itself is broken
		}
		return err
	}

	for _, p := range cfg.Patches {
		tp, err := p.Transaction()
		...
	}
*/
package config
