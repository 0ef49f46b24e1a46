package policy

// LegalBanner is shown before warn-level confirmations and on free-form
// queries when core.legal_banner is enabled.
const LegalBanner = `+---------------------------------------------------------------+
|                      LEGAL DISCLAIMER                         |
+---------------------------------------------------------------+
| KaalSec is designed for ETHICAL security testing ONLY.        |
|                                                               |
| * Only use on systems you own or have explicit permission to  |
|   test                                                        |
| * Unauthorized access is ILLEGAL and may result in criminal   |
|   prosecution                                                 |
| * You are responsible for all actions taken with this tool    |
| * KaalSec logs all executed commands for compliance           |
|                                                               |
| By using KaalSec, you agree to use it ethically and legally.  |
+---------------------------------------------------------------+`
