/*
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"log"

	"github.com/p2eengineering/kalp-sdk-public/kalpsdk"
	"github.com/seedlaunch/Seedlaunch-token/allocation"
)

func main() {
	contract := kalpsdk.Contract{IsPayableContract: false}
	contract.Logger = kalpsdk.NewLogger()
	allocationChaincode, err := kalpsdk.NewChaincode(&allocation.SmartContract{Contract: contract})
	if err != nil {
		log.Panicf("Error creating allocation chaincode: %v", err)
	}

	if err := allocationChaincode.Start(); err != nil {
		log.Panicf("Error starting allocation chaincode: %v", err)
	}
}
