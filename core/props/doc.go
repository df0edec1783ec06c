// Package props resolves the server configuration overlay.
//
// A boot is configured with a chain of .properties files. Names containing "_env." are
// first rewritten with the config environment (WEBBOOT_ENV), so app_env.properties
// becomes app_env_production.properties. The chain is then merged with viper, the first
// file winning over the ones after it.
//
// # Keys
//
//   - server.uriEncoding, server.useBodyEncodingForURI, server.secure, server.scheme,
//     server.bindAddress, server.proxyPort
//   - accesslog.enabled plus accesslog.logDir, filePrefix, fileSuffix, fileDateFormat,
//     fileEncoding, formatPattern, conditionIf, conditionUnless
//
// Boolean values are true only for "true" in any case.
package props
