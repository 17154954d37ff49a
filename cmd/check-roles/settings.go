package main

// usernames are the members whose test role is checked.
var usernames = []string{
	"burhan_gm", "flintfogo", "fogofox_1", "0xgloryoum", "wizzingg", "jakeones11",
	"kengv6740", "ember_pyron", "thee_holy_son", "shr1nko", "minhduc2510.it",
	"poqi.sol", "bablgun", "phong2461", "wwkol", "gabup77", "arfprks98",
	"orang2ancrypto", "blackkucing_", "xhena6", "zhzh_22", "kharather",
	"oxygen_web3", "kingofwar0295", "billgusssss", "bittime", "imkuvalda",
	"harmansyah0215_95897", "bhavin07", "demon_bi99", "nuel0751", "dretan12",
	"nunis0", "ngocthanhwin.161", "cryptospot27", "burak7058", "0xsmile_",
	"sidus0759", "auroraevm", "0xmybaba", "marinaafesa", "yash_2214", "diki21",
	"nongwaan", "baconcheese21", "badjon1", "pff7430", "bodia9475", ".dancrypto",
	"dovvvv", "eno8322", "flaha_dter", "good_boy98", "joshey9854", "koldovantus",
	"notuzz.sol", "oldtora", "0regan0flakes", "paulinjohitmask", "rickpeak",
	"rogalevlion", "s1qed", "savip.", "sebmontgomery", "0xstryke", "waytoff",
	"yurii760", "GigaBlaze", "appl22", "crankywakker", ".dodori", "jong3928",
	"major5599", "cmfeint", "cmgambit", "cm_gon", "itsjowe",
}
