// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	assert.Contains(t, Info(), "finredact "+Version)
	assert.Equal(t, Version, Short())

	full := Full()
	assert.Equal(t, GitCommit, full["commit"])
	assert.Equal(t, Platform, full["platform"])
}

func TestAppID(t *testing.T) {
	assert.Equal(t, "finredact/"+Version, AppID())
}
